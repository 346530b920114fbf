package resp

import (
	"bufio"
	"strconv"

	"github.com/basegate/redex/redis"
)

// maxHeaderLine is the header-line size the connection's bufio.Reader is
// sized to: readLine relies on ReadSlice, so the actual bound on a
// status/error/integer or length line is the reader's buffer size.
// decodeBulk also uses it to cap a bulk payload at maxHeaderLine*1024
// bytes (64 MiB), guarding against a misbehaving peer announcing an
// unbounded length.
const maxHeaderLine = 64 * 1024

// Decode reads one complete RESP2 reply from br. It blocks until a full
// reply has arrived or the underlying reader returns an error.
//
// A server-side error reply (a line starting with '-') is not a Go error:
// Decode returns (Reply{Type: TypeError, ...}, nil) so callers can pair it
// with its request like any other reply. The returned error is reserved
// for protocol and I/O failures - the wire itself misbehaving.
func Decode(br *bufio.Reader) (Reply, error) {
	line, err := readLine(br)
	if err != nil {
		return Reply{}, err
	}
	if len(line) == 0 {
		return Reply{}, redis.NewErr(redis.ErrKindResponse, redis.ErrHeaderlineEmpty)
	}
	switch line[0] {
	case '+':
		return Status(string(line[1:])), nil
	case '-':
		return ErrorReply(string(line[1:])), nil
	case ':':
		n, err := parseInt(line[1:])
		if err != nil {
			return Reply{}, err
		}
		return Integer(n), nil
	case '$':
		return decodeBulk(br, line[1:])
	case '*':
		return decodeArray(br, line[1:])
	default:
		return Reply{}, redis.NewErrMsg(redis.ErrKindResponse, redis.ErrUnknownHeaderType,
			"unknown reply type byte '"+string(line[0])+"'")
	}
}

// readLine reads up to the terminating "\r\n" and returns the line with
// both the CR and LF stripped.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if err != nil {
		if err == bufio.ErrBufferFull {
			return nil, redis.NewErr(redis.ErrKindResponse, redis.ErrHeaderlineTooLarge)
		}
		return nil, redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	n := len(line)
	if n < 2 || line[n-2] != '\r' {
		return nil, redis.NewErr(redis.ErrKindResponse, redis.ErrNoFinalRN)
	}
	out := make([]byte, n-2)
	copy(out, line[:n-2])
	return out, nil
}

func parseInt(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, redis.NewErr(redis.ErrKindResponse, redis.ErrIntegerParsing).Wrap(err)
	}
	return n, nil
}

func decodeBulk(br *bufio.Reader, lenLine []byte) (Reply, error) {
	n, err := parseInt(lenLine)
	if err != nil {
		return Reply{}, err
	}
	if n < 0 {
		return NullBulk(), nil
	}
	if n > maxHeaderLine*1024 {
		return Reply{}, redis.NewErr(redis.ErrKindResponse, redis.ErrHeaderlineTooLarge)
	}
	buf := make([]byte, n+2)
	if _, err := readFull(br, buf); err != nil {
		return Reply{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Reply{}, redis.NewErr(redis.ErrKindResponse, redis.ErrNoFinalRN)
	}
	return Bulk(buf[:n]), nil
}

func decodeArray(br *bufio.Reader, lenLine []byte) (Reply, error) {
	n, err := parseInt(lenLine)
	if err != nil {
		return Reply{}, err
	}
	if n < 0 {
		return NullArray(), nil
	}
	items := make([]Reply, n)
	for i := int64(0); i < n; i++ {
		items[i], err = Decode(br)
		if err != nil {
			return Reply{}, err
		}
	}
	return Array(items), nil
}

func readFull(br *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := br.Read(buf[total:])
		total += n
		if err != nil {
			if total == len(buf) {
				break
			}
			return total, redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
		}
	}
	return total, nil
}
