package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Messages are single JSON documents terminated by '\n'. Readers take a
// *bufio.Reader so that several messages can be read from one connection.

// ReadRequest reads one request line.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	var req Request
	if err := readLine(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// WriteRequest encodes and writes a Request to the given writer.
func WriteRequest(w io.Writer, req *Request) error {
	return writeLine(w, req)
}

// ReadResponse reads one response line.
func ReadResponse(r *bufio.Reader) (*Response, error) {
	var resp Response
	if err := readLine(r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WriteResponse encodes and writes a Response to the writer.
func WriteResponse(w io.Writer, resp *Response) error {
	return writeLine(w, resp)
}

// DecodeData converts a generically decoded payload (as found in
// Request.Data or Response.Data) into out.
func DecodeData(data interface{}, out interface{}) error {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func readLine(r *bufio.Reader, v interface{}) error {
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return fmt.Errorf("read error: %w", err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, v interface{}) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	bytes = append(bytes, '\n')
	_, err = w.Write(bytes)
	return err
}
