package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/easel/internal/geom"
)

// Opcode text is a '&' separated list of key=value tokens whose first token
// is action=<name>. Values escape the reserved characters as %<decimal>%.
// Group members are escaped opcodes joined by '/'.

const (
	actionGroup               = "Group"
	actionAddPoint            = "AddPoint"
	actionAddAntipodalPoint   = "AddAntipodalPoint"
	actionAddPointOnObject    = "AddPointOnObject"
	actionAddIntersection     = "AddIntersectionPoint"
	actionAddOtherParent      = "AddIntersectionOtherParent"
	actionSetUserCreated      = "SetUserCreated"
	actionAddLine             = "AddLine"
	actionAddSegment          = "AddSegment"
	actionAddCircle           = "AddCircle"
	actionAddEllipse          = "AddEllipse"
	actionAddParametric       = "AddParametric"
	actionAddPolygon          = "AddPolygon"
	actionAddAngleMarker      = "AddAngleMarker"
	actionAddLabel            = "AddLabel"
	actionAddTransformation   = "AddTransformation"
	actionAddTransformedPoint = "AddTransformedPoint"
	actionMovePoint           = "MovePoint"
	actionRotateSphere        = "RotateSphere"
	actionSetShowing          = "SetShowing"
	actionDelete              = "Delete"
)

var (
	escaper   = strings.NewReplacer("%", "%37%", "=", "%61%", "&", "%38%", "@", "%64%", "/", "%47%")
	unescaper = strings.NewReplacer("%37%", "%", "%61%", "=", "%38%", "&", "%64%", "@", "%47%", "/")
)

func escape(s string) string   { return escaper.Replace(s) }
func unescape(s string) string { return unescaper.Replace(s) }

func joinMembers(members []string) string { return strings.Join(members, "/") }

func splitMembers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

type token struct {
	key, value string
	raw        bool
}

type tokens []token

func newTokens(action string) tokens {
	return tokens{{key: "action", value: action}}
}

func (t tokens) add(key, value string) tokens {
	return append(t, token{key: key, value: value})
}

// addRaw appends a value that is already escaped.
func (t tokens) addRaw(key, value string) tokens {
	return append(t, token{key: key, value: value, raw: true})
}

func (t tokens) addInt(key string, v int) tokens { return t.add(key, strconv.Itoa(v)) }

func (t tokens) addBool(key string, v bool) tokens { return t.add(key, strconv.FormatBool(v)) }

func (t tokens) addFloat(key string, v float64) tokens {
	return t.add(key, strconv.FormatFloat(v, 'g', -1, 64))
}

func (t tokens) addVector(key string, v geom.Vector3) tokens {
	return t.add(key, formatFloats(v.X, v.Y, v.Z))
}

func (t tokens) addList(key string, items []string) tokens {
	return t.add(key, strings.Join(items, ";"))
}

func (t tokens) String() string {
	var sb strings.Builder
	for i, tok := range t {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(tok.key)
		sb.WriteByte('=')
		if tok.raw {
			sb.WriteString(tok.value)
		} else {
			sb.WriteString(escape(tok.value))
		}
	}
	return sb.String()
}

func formatFloats(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// fields is a decoded opcode. Values are unescaped except for the group
// member list, which is split before unescaping.
type fields map[string]string

func decode(op string) (fields, error) {
	f := make(fields)
	for _, part := range strings.Split(op, "&") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: token %q", ErrParse, part)
		}
		if key != "commands" {
			value = unescape(value)
		}
		f[key] = value
	}
	if f["action"] == "" {
		return nil, fmt.Errorf("%w: missing action", ErrParse)
	}
	return f, nil
}

func (f fields) str(key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", fmt.Errorf("%w: %s: missing %q", ErrParse, f["action"], key)
	}
	return v, nil
}

func (f fields) int(key string) (int, error) {
	s, err := f.str(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q: %v", ErrParse, f["action"], key, err)
	}
	return n, nil
}

func (f fields) bool(key string, def bool) (bool, error) {
	s, ok := f[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %q: %v", ErrParse, f["action"], key, err)
	}
	return b, nil
}

func (f fields) float(key string) (float64, error) {
	s, err := f.str(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q: %v", ErrParse, f["action"], key, err)
	}
	return v, nil
}

func (f fields) floats(key string, n int) ([]float64, error) {
	s, err := f.str(key)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: %s: %q: want %d numbers, got %d", ErrParse, f["action"], key, n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		if out[i], err = strconv.ParseFloat(p, 64); err != nil {
			return nil, fmt.Errorf("%w: %s: %q: %v", ErrParse, f["action"], key, err)
		}
	}
	return out, nil
}

func (f fields) vector(key string) (geom.Vector3, error) {
	vs, err := f.floats(key, 3)
	if err != nil {
		return geom.Vector3{}, err
	}
	return geom.V3(vs[0], vs[1], vs[2]), nil
}

func (f fields) list(key string) ([]string, error) {
	s, err := f.str(key)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, ";"), nil
}
