package yamlv

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// KeyString converts a value to the string used when it appears as a mapping
// key: strings as is, integers in decimal, floats with %.6G, true as "1", false
// and null as "", collections as canonical flow text.
func KeyString(v *Value) string {
	switch v.Type() {
	case TypeNull:
		return ""
	case TypeBool:
		if v.boolVal {
			return "1"
		}
		return ""
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10)
	case TypeFloat:
		return keyFloat(v.floatVal)
	case TypeStr:
		return v.strVal
	case TypeBytes:
		return string(v.bytesVal)
	case TypeTime:
		return v.timeVal.Format(time.RFC3339Nano)
	}
	var b strings.Builder
	writeCanon(&b, v, map[*Value]bool{})
	return b.String()
}

func keyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return fmt.Sprintf("%.6G", f)
}

// ============================================================
// Canonical flow text
// ============================================================

// writeCanon writes v as single-line flow YAML. A collection met again while
// it is being written is written as "*".
func writeCanon(b *strings.Builder, v *Value, open map[*Value]bool) {
	switch v.Type() {
	case TypeNull:
		b.WriteString("~")
	case TypeBool:
		b.WriteString(strconv.FormatBool(v.boolVal))
	case TypeInt:
		b.WriteString(strconv.FormatInt(v.intVal, 10))
	case TypeFloat:
		b.WriteString(formatFloat(v.floatVal))
	case TypeStr:
		b.WriteString(canonString(v.strVal))
	case TypeBytes:
		b.WriteString("!!binary ")
		b.WriteString(base64.StdEncoding.EncodeToString(v.bytesVal))
	case TypeTime:
		b.WriteString(v.timeVal.Format(time.RFC3339Nano))
	case TypeOpaque:
		fmt.Fprintf(b, "!opaque %q", fmt.Sprint(v.opaque))
	case TypeSeq, TypeMap:
		if open[v] {
			b.WriteString("*")
			return
		}
		open[v] = true
		defer delete(open, v)
		if v.typ == TypeSeq {
			b.WriteByte('[')
			for i, item := range v.seqVal {
				if i > 0 {
					b.WriteString(", ")
				}
				writeCanon(b, item, open)
			}
			b.WriteByte(']')
			return
		}
		b.WriteByte('{')
		for i, e := range v.mapVal {
			if i > 0 {
				b.WriteString(", ")
			}
			writeCanon(b, e.Key, open)
			b.WriteString(": ")
			writeCanon(b, e.Value, open)
		}
		b.WriteByte('}')
	}
}

// canonString quotes s unless it reads back as the same plain string.
func canonString(s string) string {
	if isBareSafe(s) {
		return s
	}
	return strconv.Quote(s)
}

// isBareSafe checks if a string can be written plain inside flow text.
func isBareSafe(s string) bool {
	if s == "" {
		return false
	}
	if Classify(Scalar{Text: s, PlainImplicit: true}).Class != ClassString {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_' || c == '-' || c == '.' || c == '/':
		default:
			return false
		}
	}
	return true
}
