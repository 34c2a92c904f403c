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

package rtti_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/stream"
	"dirpx.dev/rtti/typeinfo"
)

func TestWriteReadType(t *testing.T) {
	reset(t)
	ft, err := rtti.Register[MyType](rtti.WithName("Foo"))
	require.NoError(t, err)

	for _, enc := range []apis.TypeEncoding{apis.ByHandle, apis.ByName} {
		t.Run(enc.String(), func(t *testing.T) {
			w := stream.NewOutputStream(nil)
			require.NoError(t, rtti.WriteType(w, ft, enc))
			require.NoError(t, rtti.WriteType(w, rtti.Type{}, enc))

			r := stream.InputStreamFrom(w.Bytes())
			got, err := rtti.ReadType(r, enc)
			require.NoError(t, err)
			assert.Equal(t, ft, got)
			null, err := rtti.ReadType(r, enc)
			require.NoError(t, err)
			assert.True(t, null.IsNull())
		})
	}

	w := stream.NewOutputStream(nil)
	stream.Write(w, uint16(typeinfo.InvalidHandle-1))
	_, err = rtti.ReadType(stream.InputStreamFrom(w.Bytes()), apis.ByHandle)
	assert.ErrorIs(t, err, rtti.ErrUnknownType)

	w = stream.NewOutputStream(nil)
	w.WriteString("no.such.Type")
	_, err = rtti.ReadType(stream.InputStreamFrom(w.Bytes()), apis.ByName)
	assert.ErrorIs(t, err, rtti.ErrUnknownType)
}

func TestSerializeGeneric(t *testing.T) {
	reset(t)
	in := MyType{ID: 3, Tags: []string{"red"}}

	for _, enc := range []apis.TypeEncoding{apis.ByHandle, apis.ByName} {
		t.Run(enc.String(), func(t *testing.T) {
			w := stream.NewOutputStream(nil)
			require.NoError(t, rtti.SerializeGeneric(w, rtti.ConstPointerTo(&in), enc))

			r := stream.InputStreamFrom(w.Bytes())
			obj, err := rtti.DeserializeGeneric(r, enc)
			require.NoError(t, err)
			require.NotNil(t, obj)
			assert.Equal(t, rtti.TypeOf[MyType](), obj.Type())
			assert.Equal(t, in, obj.Interface())
			assert.False(t, r.MoreDataAvailable())
		})
	}
}

func TestSerializeGeneric_Null(t *testing.T) {
	reset(t)
	w := stream.NewOutputStream(nil)
	require.NoError(t, rtti.SerializeGeneric(w, rtti.ConstPointer{}, apis.ByName))

	obj, err := rtti.DeserializeGeneric(stream.InputStreamFrom(w.Bytes()), apis.ByName)
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestDeserializeGeneric_TruncatedPayload(t *testing.T) {
	reset(t)
	in := point{1, 2}
	w := stream.NewOutputStream(nil)
	require.NoError(t, rtti.SerializeGeneric(w, rtti.ConstPointerTo(&in), apis.ByHandle))

	b := w.Bytes()
	_, err := rtti.DeserializeGeneric(stream.InputStreamFrom(b[:len(b)-1]), apis.ByHandle)
	assert.Error(t, err)
}
