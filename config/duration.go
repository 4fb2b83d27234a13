package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration which is represented in JSON as a string, e.g. "90s".
// Plain numbers are accepted as well and treated as nanoseconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var value any
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case float64:
		*d = Duration(v)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}

		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration: %s", b)
	}

	return nil
}
