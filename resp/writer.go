package resp

import (
	"fmt"
	"strconv"

	"github.com/basegate/redex/redis"
)

// EncodeCommand appends the inline multi-bulk encoding of cmd to buf and
// returns the extended slice. Args of type string, []byte, bool, nil and
// every builtin integer and float kind are supported directly; numbers
// encode as their decimal text, bool as "1"/"0" and nil as an empty bulk
// string, matching how the teacher's own request encoder treats them.
// Anything else fails with ErrArgumentType.
func EncodeCommand(buf []byte, cmd redis.Command) ([]byte, error) {
	buf = append(buf, '*')
	buf = appendInt(buf, int64(len(cmd.Args)+1))
	buf = append(buf, '\r', '\n')

	buf = appendBulkString(buf, cmd.Name)

	for _, arg := range cmd.Args {
		var err error
		buf, err = appendArg(buf, arg)
		if err != nil {
			return buf, err
		}
	}
	return buf, nil
}

func appendArg(buf []byte, arg interface{}) ([]byte, error) {
	switch v := arg.(type) {
	case string:
		return appendBulkString(buf, v), nil
	case []byte:
		return appendBulkBytes(buf, v), nil
	case int:
		return appendBulkString(buf, strconv.Itoa(v)), nil
	case int64:
		return appendBulkString(buf, strconv.FormatInt(v, 10)), nil
	case uint64:
		return appendBulkString(buf, strconv.FormatUint(v, 10)), nil
	case float64:
		return appendBulkString(buf, strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int8, int16, int32, uint, uint8, uint16, uint32:
		return appendBulkString(buf, fmt.Sprint(v)), nil
	case float32:
		return appendBulkString(buf, strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	case bool:
		if v {
			return appendBulkString(buf, "1"), nil
		}
		return appendBulkString(buf, "0"), nil
	case nil:
		return appendBulkString(buf, ""), nil
	default:
		return buf, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrArgumentType,
			"unsupported command argument type").With("type", v)
	}
}

func appendBulkString(buf []byte, s string) []byte {
	buf = append(buf, '$')
	buf = appendInt(buf, int64(len(s)))
	buf = append(buf, '\r', '\n')
	buf = append(buf, s...)
	buf = append(buf, '\r', '\n')
	return buf
}

func appendBulkBytes(buf []byte, b []byte) []byte {
	buf = append(buf, '$')
	buf = appendInt(buf, int64(len(b)))
	buf = append(buf, '\r', '\n')
	buf = append(buf, b...)
	buf = append(buf, '\r', '\n')
	return buf
}

func appendInt(buf []byte, n int64) []byte {
	return strconv.AppendInt(buf, n, 10)
}
