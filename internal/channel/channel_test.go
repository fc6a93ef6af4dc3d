package channel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// TestChannel_TestSuite executes the test suite for the Sender and Receiver
// types of this package.
func TestChannel_TestSuite(t *testing.T) {
	suite.Run(t, new(Channel_TestSuite))
}

// Channel_TestSuite tests a freshly created channel.
type Channel_TestSuite struct {
	suite.Suite

	tx *Sender[int]
	rx *Receiver[int]
}

// SetupTest creates a new channel for every test.
func (c *Channel_TestSuite) SetupTest() {
	c.tx, c.rx = New[int]()
}

// TearDownTest drops the channel ends so they can be garbage collected.
func (c *Channel_TestSuite) TearDownTest() {
	c.tx, c.rx = nil, nil
}

// TestChannel_Recv_ReturnsValuesInSendOrder ensures values are received in
// the order they were sent.
func (c *Channel_TestSuite) TestChannel_Recv_ReturnsValuesInSendOrder() {
	for i := 0; i < 5; i++ {
		c.Require().NoError(c.tx.Send(i))
	}
	c.Require().Equal(5, c.rx.Len())

	for i := 0; i < 5; i++ {
		v, ok := c.rx.Recv()
		c.Require().True(ok)
		c.Require().Equal(i, v)
	}
	c.Require().Equal(0, c.rx.Len())
}

// TestChannel_Recv_BlocksUntilValueSent ensures Recv does not return before
// a value has been sent.
func (c *Channel_TestSuite) TestChannel_Recv_BlocksUntilValueSent() {

	var sendTime time.Time

	go func() {
		time.Sleep(100 * time.Millisecond)
		sendTime = time.Now()
		_ = c.tx.Send(42)
	}()

	v, ok := c.rx.Recv()
	recvTime := time.Now()

	c.Require().True(ok)
	c.Require().Equal(42, v)
	c.Require().True(sendTime.Before(recvTime))
}

// TestChannel_Recv_DrainsBeforeReportingClosed ensures values sent before
// Close are still delivered.
func (c *Channel_TestSuite) TestChannel_Recv_DrainsBeforeReportingClosed() {
	c.Require().NoError(c.tx.Send(1))
	c.Require().NoError(c.tx.Send(2))
	c.Require().NoError(c.tx.Close())

	v, ok := c.rx.Recv()
	c.Require().True(ok)
	c.Require().Equal(1, v)

	v, ok = c.rx.Recv()
	c.Require().True(ok)
	c.Require().Equal(2, v)

	_, ok = c.rx.Recv()
	c.Require().False(ok)
}

// TestChannel_Close_WakesBlockedReceivers ensures every receiver waiting on
// an empty channel returns once the channel is closed.
func (c *Channel_TestSuite) TestChannel_Close_WakesBlockedReceivers() {

	wg := &sync.WaitGroup{}
	results := make([]bool, 3)

	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = c.rx.Recv()
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	c.Require().NoError(c.tx.Close())
	wg.Wait()

	for _, ok := range results {
		c.Require().False(ok)
	}
}

// TestChannel_Send_ErrorsAfterClose ensures Send reports a closed channel.
func (c *Channel_TestSuite) TestChannel_Send_ErrorsAfterClose() {
	c.Require().NoError(c.tx.Close())
	c.Require().ErrorIs(c.tx.Send(1), ErrClosed)
	c.Require().Equal(0, c.rx.Len())
}

// TestChannel_Close_ErrorsWhenCalledTwice ensures the second Close reports
// ErrClosed.
func (c *Channel_TestSuite) TestChannel_Close_ErrorsWhenCalledTwice() {
	c.Require().NoError(c.tx.Close())
	c.Require().ErrorIs(c.tx.Close(), ErrClosed)
}
