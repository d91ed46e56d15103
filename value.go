package conf

import "strconv"

// Canonical textual forms for typed variables. These are the exact inverses
// of the parse helpers below, so a typed set followed by a typed get
// round-trips to an equal value.

func formatInt(v int) string         { return strconv.Itoa(v) }
func formatInt64(v int64) string     { return strconv.FormatInt(v, 10) }
func formatFloat64(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
func formatBool(v bool) string       { return strconv.FormatBool(v) }

// The parse helpers convert stored text to typed values. Callers handle
// absent variables; the text here is always a stored value.

func parseInt(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConversionError{Name: name, Value: value, Target: "int", Err: err}
	}
	return v, nil
}

func parseInt64(name, value string) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ConversionError{Name: name, Value: value, Target: "int64", Err: err}
	}
	return v, nil
}

func parseFloat64(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ConversionError{Name: name, Value: value, Target: "float64", Err: err}
	}
	return v, nil
}

func parseBool(name, value string) (bool, error) {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConversionError{Name: name, Value: value, Target: "bool", Err: err}
	}
	return v, nil
}
