/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package synth

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	uref "dirpx.dev/rtti/utils/reflect"
)

type stringPair struct {
	ser func(w *stream.StringOutputStream, p unsafe.Pointer) error
	de  func(r *stream.StringInputStream, p unsafe.Pointer) error
}

var stringChain = []candidate[stringPair]{
	{"methods", (*plan).stringMethods},
	{"text-marshaler", (*plan).stringTextMarshaler},
	{"enum", (*plan).stringEnum},
	{"basic", (*plan).stringBasic},
}

func (p *plan) stringMethods() (stringPair, bool, error) {
	if !uref.HasStringMethods(p.t) {
		return stringPair{}, false, nil
	}
	t := p.t
	return stringPair{
		ser: func(w *stream.StringOutputStream, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.StringSerializer).SerializeString(w)
		},
		de: func(r *stream.StringInputStream, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(apis.StringDeserializer).DeserializeString(r)
		},
	}, true, nil
}

func (p *plan) stringTextMarshaler() (stringPair, bool, error) {
	if !uref.HasTextMarshaler(p.t) {
		return stringPair{}, false, nil
	}
	t := p.t
	return stringPair{
		ser: func(w *stream.StringOutputStream, ptr unsafe.Pointer) error {
			b, err := reflect.NewAt(t, ptr).Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return err
			}
			w.WriteString(string(b))
			return nil
		},
		de: func(r *stream.StringInputStream, ptr unsafe.Pointer) error {
			return reflect.NewAt(t, ptr).Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(r.ReadAll()))
		},
	}, true, nil
}

// stringEnum writes the constant name, or the number for values outside the
// table, and reads either form back.
func (p *plan) stringEnum() (stringPair, bool, error) {
	e := p.d.Enum()
	if e == nil {
		return stringPair{}, false, nil
	}
	t := p.t
	return stringPair{
		ser: func(w *stream.StringOutputStream, ptr unsafe.Pointer) error {
			n := integer(value(t, ptr))
			if name, ok := e.NameOf(n); ok {
				w.WriteString(name)
				return nil
			}
			w.WriteString(strconv.FormatInt(n, 10))
			return nil
		},
		de: func(r *stream.StringInputStream, ptr unsafe.Pointer) error {
			s := strings.TrimSpace(r.ReadAll())
			v := value(t, ptr)
			if n, ok := e.ValueOf(s); ok {
				setInteger(v, n)
				return nil
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q for %v", ErrUnknownEnumConstant, s, t)
			}
			setInteger(v, n)
			return nil
		},
	}, true, nil
}

func (p *plan) stringBasic() (stringPair, bool, error) {
	if !uref.IsBasic(p.t) {
		return stringPair{}, false, nil
	}
	t := p.t
	return stringPair{
		ser: func(w *stream.StringOutputStream, ptr unsafe.Pointer) error {
			w.WriteString(formatBasic(value(t, ptr)))
			return nil
		},
		de: func(r *stream.StringInputStream, ptr unsafe.Pointer) error {
			return parseBasic(value(t, ptr), r.ReadAll())
		},
	}, true, nil
}

func formatBasic(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, v.Type().Bits())
	}
	return v.String()
}

// parseBasic sets v from s. Surrounding whitespace is ignored except for
// strings.
func parseBasic(v reflect.Value, s string) error {
	if v.Kind() == reflect.String {
		v.SetString(s)
		return nil
	}
	s = strings.TrimSpace(s)
	var err error
	switch v.Kind() {
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(s); err == nil {
			v.SetBool(b)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(s, 10, v.Type().Bits()); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		if n, err = strconv.ParseUint(s, 10, v.Type().Bits()); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(s, v.Type().Bits()); err == nil {
			v.SetFloat(f)
		}
	case reflect.Complex64, reflect.Complex128:
		var c complex128
		if c, err = strconv.ParseComplex(s, v.Type().Bits()); err == nil {
			v.SetComplex(c)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
