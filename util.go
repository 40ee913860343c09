package svglayers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/parse/v2"
)

func ftos(f float64) string {
	if f == 0.0 {
		return "0" // avoid -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// splitDimension splits a length such as "210mm" into its number and unit.
func splitDimension(v string) (float64, string, error) {
	v = strings.TrimSpace(v)
	nn, _ := parse.Dimension([]byte(v))
	if nn == 0 {
		return 0.0, "", fmt.Errorf("bad dimension: %s", v)
	}
	num, err := strconv.ParseFloat(v[:nn], 64)
	if err != nil {
		return 0.0, "", fmt.Errorf("bad dimension: %s: %w", v, err)
	}
	return num, v[nn:], nil
}

// parseLength parses a length into user units, percentages are relative to parent.
func parseLength(v string, parent float64) (float64, error) {
	if strings.TrimSpace(v) == "" {
		return 0.0, nil
	}
	num, unit, err := splitDimension(v)
	if err != nil {
		return 0.0, err
	}
	switch strings.ToLower(unit) {
	case "", "px":
		return num, nil
	case "cm":
		return num * 10.0 * 96.0 / 25.4, nil
	case "mm":
		return num * 96.0 / 25.4, nil
	case "q":
		return num * 0.25 * 96.0 / 25.4, nil
	case "in":
		return num * 96.0, nil
	case "pc":
		return num * 96.0 / 6.0, nil
	case "pt":
		return num * 96.0 / 72.0, nil
	case "%":
		return num * parent / 100.0, nil
	}
	return 0.0, fmt.Errorf("unknown dimension: %s", v)
}

// parseNumbers parses a list of numbers separated by whitespace and/or commas.
func parseNumbers(v string) ([]float64, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	nums := make([]float64, 0, len(fields))
	for _, field := range fields {
		num, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number list: %s", v)
		}
		nums = append(nums, num)
	}
	return nums, nil
}

// parseTransform parses an SVG transform attribute. Transforms are applied right to left, so the
// leftmost transform is applied last.
func parseTransform(v string) (canvas.Matrix, error) {
	m := canvas.Identity
	i, j := 0, 0
	var fun string
	for i < len(v) {
		if v[i] == '(' {
			fun = strings.ToLower(strings.Trim(v[j:i], " \t\n\r,"))
			j = i + 1
		} else if v[i] == ')' {
			d, err := parseNumbers(v[j:i])
			if err != nil {
				return m, err
			}
			switch fun {
			case "matrix":
				if len(d) != 6 {
					return m, fmt.Errorf("bad transform matrix: %s", v)
				}
				m = m.Mul(canvas.Matrix{{d[0], d[2], d[4]}, {d[1], d[3], d[5]}})
			case "translate":
				if len(d) == 1 {
					m = m.Translate(d[0], 0.0)
				} else if len(d) == 2 {
					m = m.Translate(d[0], d[1])
				} else {
					return m, fmt.Errorf("bad transform translate: %s", v)
				}
			case "scale":
				if len(d) == 1 {
					m = m.Scale(d[0], d[0])
				} else if len(d) == 2 {
					m = m.Scale(d[0], d[1])
				} else {
					return m, fmt.Errorf("bad transform scale: %s", v)
				}
			case "rotate":
				if len(d) != 1 && len(d) != 3 {
					return m, fmt.Errorf("bad transform rotate: %s", v)
				}
				sin, cos := math.Sincos(d[0] * math.Pi / 180.0)
				rot := canvas.Matrix{{cos, -sin, 0.0}, {sin, cos, 0.0}}
				if len(d) == 3 {
					m = m.Translate(d[1], d[2]).Mul(rot).Translate(-d[1], -d[2])
				} else {
					m = m.Mul(rot)
				}
			case "skewx":
				if len(d) != 1 {
					return m, fmt.Errorf("bad transform skewX: %s", v)
				}
				m = m.Mul(canvas.Matrix{{1.0, math.Tan(d[0] * math.Pi / 180.0), 0.0}, {0.0, 1.0, 0.0}})
			case "skewy":
				if len(d) != 1 {
					return m, fmt.Errorf("bad transform skewY: %s", v)
				}
				m = m.Mul(canvas.Matrix{{1.0, 0.0, 0.0}, {math.Tan(d[0] * math.Pi / 180.0), 1.0, 0.0}})
			default:
				return m, fmt.Errorf("unknown transform %s: %s", fun, v)
			}
			j = i + 1
		}
		i++
	}
	if strings.Trim(v[j:], " \t\n\r,") != "" {
		return m, fmt.Errorf("bad transform: %s", v)
	}
	return m, nil
}
