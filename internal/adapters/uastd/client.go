package uastd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/corey/repolex/internal/ports"
)

const dialTimeout = 2 * time.Second

// maxResponseLine bounds one JSON response; identifier lists for a single
// file comfortably fit.
const maxResponseLine = 4 * 1024 * 1024

// Client implements ports.ParserClient against a uastd endpoint. It keeps
// one connection open and is not safe for concurrent use — the pipeline
// gives each worker its own Client.
type Client struct {
	network string
	addr    string
	conn    net.Conn
	rd      *bufio.Reader
	seq     int
	broken  bool
}

// Dial connects to an endpoint of the form "unix:///path/to.sock",
// "tcp://host:port", or a bare "host:port".
func Dial(endpoint string) (*Client, error) {
	network, addr := splitEndpoint(endpoint)
	c := &Client{network: network, addr: addr}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Factory returns a ports.ClientFactory dialing the given endpoint, one
// connection per invocation.
func Factory(endpoint string) ports.ClientFactory {
	return func() (ports.ParserClient, error) {
		return Dial(endpoint)
	}
}

func splitEndpoint(endpoint string) (network, addr string) {
	switch {
	case strings.HasPrefix(endpoint, "unix://"):
		return "unix", strings.TrimPrefix(endpoint, "unix://")
	case strings.HasPrefix(endpoint, "tcp://"):
		return "tcp", strings.TrimPrefix(endpoint, "tcp://")
	default:
		return "tcp", endpoint
	}
}

func (c *Client) connect() error {
	conn, err := net.DialTimeout(c.network, c.addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.addr, err)
	}
	c.conn = conn
	c.rd = bufio.NewReaderSize(conn, 64*1024)
	c.broken = false
	return nil
}

// Parse requests a tree for path. A server-side no-result or an I/O timeout
// maps to ports.ErrNoResult; after a timeout the connection is considered
// poisoned (a late reply could interleave with the next call) and is redialed
// on the next use.
func (c *Client) Parse(ctx context.Context, path, language string) (*ports.UAST, error) {
	if c.broken || c.conn == nil {
		if c.conn != nil {
			c.conn.Close()
		}
		if err := c.connect(); err != nil {
			return nil, err
		}
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(10 * time.Second)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	c.seq++
	params, err := json.Marshal(ParseParams{
		Path:      path,
		Language:  language,
		TimeoutMS: time.Until(deadline).Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	resp, err := c.call(Request{
		ID:     strconv.Itoa(c.seq),
		Method: MethodParse,
		Params: params,
	})
	if err != nil {
		c.broken = true
		if isTimeout(err) {
			return nil, ports.ErrNoResult
		}
		return nil, err
	}

	var result ParseResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	if result.NoResult {
		return nil, ports.ErrNoResult
	}
	return &ports.UAST{
		Path:        path,
		Language:    language,
		NodeCount:   result.NodeCount,
		Identifiers: result.Identifiers,
	}, nil
}

// Health checks that the service answers at all.
func (c *Client) Health() error {
	if c.conn == nil || c.broken {
		if err := c.connect(); err != nil {
			return err
		}
	}
	if err := c.conn.SetDeadline(time.Now().Add(dialTimeout)); err != nil {
		return err
	}
	c.seq++
	_, err := c.call(Request{ID: strconv.Itoa(c.seq), Method: MethodHealth})
	if err != nil {
		c.broken = true
	}
	return err
}

// Close shuts the connection down.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) call(req Request) (*Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	line, err := readLine(c.rd, maxResponseLine)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	if resp.ID != req.ID {
		return nil, fmt.Errorf("response id %q for request %q", resp.ID, req.ID)
	}
	return &resp, nil
}

func readLine(rd *bufio.Reader, limit int) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := rd.ReadBytes('\n')
		buf = append(buf, chunk...)
		if err != nil {
			return nil, err
		}
		if len(buf) > limit {
			return nil, fmt.Errorf("response exceeds %d bytes", limit)
		}
		if len(buf) > 0 && buf[len(buf)-1] == '\n' {
			return buf[:len(buf)-1], nil
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
