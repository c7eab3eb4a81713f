package row

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalOperation produces the canonical wire form of op: compact JSON with
// sorted keys, NFC-normalized strings and base64 blobs. The provider sizes
// batches with it; tests use it for golden output.
//
// Layout:
//
//	{"back_refs":{..},"kind":"insert","selection":"..","selection_args":[..],"table":"data","values":{..},"yield":true}
//
// back_refs, selection, selection_args and yield are omitted when empty.
func MarshalOperation(op Operation) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if len(op.BackRefs) > 0 {
		buf.WriteString(`"back_refs":{`)
		for i, col := range op.ReferencedColumns() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, col); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(op.BackRefs[col].Index))
		}
		buf.WriteString("},")
	}

	buf.WriteString(`"kind":`)
	if err := writeString(&buf, op.Kind.String()); err != nil {
		return nil, err
	}

	if op.Selection != "" {
		buf.WriteString(`,"selection":`)
		if err := writeString(&buf, op.Selection); err != nil {
			return nil, err
		}
	}
	if len(op.SelectionArgs) > 0 {
		buf.WriteString(`,"selection_args":[`)
		for i, arg := range op.SelectionArgs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(&buf, arg); err != nil {
				return nil, fmt.Errorf("selection_args[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	}

	buf.WriteString(`,"table":`)
	if err := writeString(&buf, op.Table); err != nil {
		return nil, err
	}

	buf.WriteString(`,"values":{`)
	keys := op.Values.Keys()
	slices.Sort(keys)
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		v, _ := op.Values.Get(k)
		if err := writeValue(&buf, v); err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
	}
	buf.WriteByte('}')

	if op.YieldAllowed {
		buf.WriteString(`,"yield":true`)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodedSize returns the total canonical size of ops in bytes, counting
// one separator byte per operation.
func EncodedSize(ops []Operation) (int, error) {
	total := 0
	for i, op := range ops {
		b, err := MarshalOperation(op)
		if err != nil {
			return 0, fmt.Errorf("operation %d: %w", i, err)
		}
		total += len(b) + 1
	}
	return total, nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return writeString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Blob:
		buf.WriteByte('"')
		buf.WriteString(base64.StdEncoding.EncodeToString(val))
		buf.WriteByte('"')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

// writeString writes s as an NFC-normalized JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
