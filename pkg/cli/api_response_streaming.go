package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

var _ APIResponse = &StreamingAPIResponse{}

type StreamingAPIResponseHandler func(ctx context.Context, conn *websocket.Conn, msg chan string, err chan error)

type StreamingAPIResponse struct {
	url           *url.URL
	streamContext context.Context
	cancel        context.CancelFunc
	streamingFunc StreamingAPIResponseHandler
	dialer        *websocket.Dialer
	out           io.Writer
}

func NewStreamingAPIResponse(url *url.URL, dialer *websocket.Dialer, streamingFunc StreamingAPIResponseHandler) *StreamingAPIResponse {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamingAPIResponse{
		url:           url,
		streamContext: ctx,
		cancel:        cancel,
		streamingFunc: streamingFunc,
		dialer:        dialer,
		out:           os.Stdout,
	}
}

func (resp *StreamingAPIResponse) Err() error {
	return nil
}

// Stop ends a running Print.
func (resp *StreamingAPIResponse) Stop() {
	resp.cancel()
}

func (resp *StreamingAPIResponse) Print() error {
	conn, _, err := resp.dialer.DialContext(resp.streamContext, resp.url.String(), nil)
	if err != nil {
		return fmt.Errorf("error dialing to %s: %w", resp.url.String(), err)
	}

	messageChan := make(chan string)
	errorChan := make(chan error, 1)

	defer func() {
		resp.cancel()
		conn.Close()
	}()

	go resp.streamingFunc(resp.streamContext, conn, messageChan, errorChan)

	for {
		select {
		case msg := <-messageChan:
			fmt.Fprintln(resp.out, msg)
		case err := <-errorChan:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case <-resp.streamContext.Done():
			return nil
		}
	}
}
