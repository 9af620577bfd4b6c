package interval

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/govalues/decimal"

	"github.com/verte-zerg/interval/pkg/duration"
)

// ErrUnsupportedValue is returned by Encode for values that are neither a
// duration nor a number.
var ErrUnsupportedValue = errors.New("unsupported interval value")

// Codec is the storage boundary: Decode reads a stored interval and Encode
// renders a value as ISO 8601 text.
type Codec struct {
	Parser *Parser
	// Precision is the number of fractional second digits Encode writes.
	// Negative means shortest form.
	Precision int
}

// NewCodec returns a codec over the default parser.
func NewCodec(clock duration.Clock, precision int) *Codec {
	return &Codec{Parser: NewParser(clock), Precision: precision}
}

// Decode parses a stored interval.
func (c *Codec) Decode(text string) (duration.Duration, error) {
	return c.parser().Parse(text)
}

// Encode renders a duration.Duration, or a number of seconds, as ISO 8601.
// Numbers may be decimal.Decimal, any integer or float type, or a
// time.Duration.
func (c *Codec) Encode(value any) (string, error) {
	d, err := c.asDuration(value)
	if err != nil {
		return "", err
	}
	return d.Format(c.Precision), nil
}

func (c *Codec) asDuration(value any) (duration.Duration, error) {
	var n decimal.Decimal
	var err error
	switch v := value.(type) {
	case duration.Duration:
		return v, nil
	case *duration.Duration:
		if v == nil {
			return duration.Duration{}, fmt.Errorf("%w: nil *duration.Duration", ErrUnsupportedValue)
		}
		return *v, nil
	case decimal.Decimal:
		n = v
	case time.Duration:
		n, err = decimal.New(int64(v), 9)
	case int:
		n, err = decimal.New(int64(v), 0)
	case int8:
		n, err = decimal.New(int64(v), 0)
	case int16:
		n, err = decimal.New(int64(v), 0)
	case int32:
		n, err = decimal.New(int64(v), 0)
	case int64:
		n, err = decimal.New(v, 0)
	case uint:
		n, err = decimal.Parse(strconv.FormatUint(uint64(v), 10))
	case uint8:
		n, err = decimal.New(int64(v), 0)
	case uint16:
		n, err = decimal.New(int64(v), 0)
	case uint32:
		n, err = decimal.New(int64(v), 0)
	case uint64:
		n, err = decimal.Parse(strconv.FormatUint(v, 10))
	case float32:
		n, err = decimal.NewFromFloat64(float64(v))
	case float64:
		n, err = decimal.NewFromFloat64(v)
	default:
		return duration.Duration{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	if err != nil {
		return duration.Duration{}, fmt.Errorf("encode %v: %w", value, err)
	}
	return duration.Duration{}.AddSeconds(n.Trim(0)), nil
}

func (c *Codec) parser() *Parser {
	if c.Parser == nil {
		c.Parser = NewParser(duration.SystemClock)
	}
	return c.Parser
}

// Scanner returns a sql.Scanner that decodes a text column into dst.
// NULL leaves dst as the empty duration.
func (c *Codec) Scanner(dst *duration.Duration) sql.Scanner {
	return scanFunc(func(src any) error {
		switch v := src.(type) {
		case nil:
			*dst = duration.Duration{}
			return nil
		case string:
			d, err := c.Decode(v)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		case []byte:
			d, err := c.Decode(string(v))
			if err != nil {
				return err
			}
			*dst = d
			return nil
		default:
			return fmt.Errorf("scan interval: unsupported source %T", src)
		}
	})
}

// Valuer returns a driver.Valuer that encodes v. A nil v is NULL.
func (c *Codec) Valuer(v any) driver.Valuer {
	return valueFunc(func() (driver.Value, error) {
		if v == nil {
			return nil, nil
		}
		s, err := c.Encode(v)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

type scanFunc func(src any) error

func (f scanFunc) Scan(src any) error { return f(src) }

type valueFunc func() (driver.Value, error)

func (f valueFunc) Value() (driver.Value, error) { return f() }
