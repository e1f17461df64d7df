package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start submits a new generation job.
func (c *Client) Start(req StartRequest) (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Tryon.Start", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the current job snapshot.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Tryon.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Clear resets the job slot to idle.
func (c *Client) Clear() (*ClearResponse, error) {
	var resp ClearResponse
	if err := c.client.Call("Tryon.Clear", ClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Result fetches the generated image of a completed job.
func (c *Client) Result() (*ResultResponse, error) {
	var resp ResultResponse
	if err := c.client.Call("Tryon.Result", ResultRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Wait long-polls for a transition away from the given observation.
func (c *Client) Wait(req WaitRequest) (*WaitResponse, error) {
	var resp WaitResponse
	if err := c.client.Call("Tryon.Wait", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PhotoSet persists the reference photo.
func (c *Client) PhotoSet(req PhotoSetRequest) (*PhotoSetResponse, error) {
	var resp PhotoSetResponse
	if err := c.client.Call("Tryon.PhotoSet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PhotoGet fetches the persisted reference photo.
func (c *Client) PhotoGet() (*PhotoGetResponse, error) {
	var resp PhotoGetResponse
	if err := c.client.Call("Tryon.PhotoGet", PhotoGetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PhotoRemove deletes the persisted reference photo.
func (c *Client) PhotoRemove() (*PhotoRemoveResponse, error) {
	var resp PhotoRemoveResponse
	if err := c.client.Call("Tryon.PhotoRemove", PhotoRemoveRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Extract runs page extraction on the daemon.
func (c *Client) Extract(pageURL string) (*ExtractResponse, error) {
	var resp ExtractResponse
	if err := c.client.Call("Tryon.Extract", ExtractRequest{PageURL: pageURL}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Tryon.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logs reads daemon log lines starting at the given offset.
func (c *Client) Logs(req LogsRequest) (*LogsResponse, error) {
	var resp LogsResponse
	if err := c.client.Call("Tryon.Logs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Tryon.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
