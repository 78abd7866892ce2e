package config

import (
	"fmt"
	"strconv"
	"time"

	json "github.com/json-iterator/go"
)

// Duration is a time.Duration, represented in JSON either as a string in the
// time.ParseDuration format ("90s", "1m30s") or as a number of nanoseconds.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &value); err != nil {
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
		return fmt.Errorf("bad duration: %s", data)
	}

	return nil
}
