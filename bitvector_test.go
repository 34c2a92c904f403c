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

func TestBitVector(t *testing.T) {
	v := rtti.NewBitVector(false, true, false, true)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, "0101", v.String())

	v.Resize(70)
	v.Set(69, true)
	assert.True(t, v.Get(69))
	v.Set(100, true)
	assert.False(t, v.Get(100))

	v.Resize(3)
	assert.Equal(t, []bool{false, true, false}, v.Bools())
	v.Resize(70)
	assert.False(t, v.Get(69), "bits dropped by a shrink must not come back")
}

func TestBitVector_ProxyVector(t *testing.T) {
	reset(t)
	bt := rtti.TypeOf[rtti.BitVector]()
	assert.Equal(t, "BitVector", bt.Name())
	require.True(t, bt.IsVector())
	assert.True(t, bt.Traits().Has(typeinfo.TraitElementProxy))
	assert.Equal(t, rtti.TypeOf[bool](), bt.Element())

	v := rtti.NewBitVector(true, false, true)
	p := rtti.PointerTo(v)
	assert.Equal(t, 3, p.VectorSize())
	_, err := p.VectorElement(0)
	assert.ErrorIs(t, err, rtti.ErrElementProxy)

	require.NoError(t, p.ResizeVector(5))
	assert.Equal(t, "10100", v.String())
}

func TestBitVector_CopyAndCompare(t *testing.T) {
	reset(t)
	a := rtti.NewBitVector(true, true, false)
	var b rtti.BitVector
	pa, pb := rtti.PointerTo(a), rtti.PointerTo(&b)

	require.NoError(t, pb.DeepCopyFrom(pa.Const()))
	assert.True(t, pa.Equals(pb.Const()))
	b.Set(2, true)
	assert.False(t, a.Get(2))
	assert.False(t, pa.Equals(pb.Const()))
}

func TestBitVector_Serialize(t *testing.T) {
	reset(t)
	in := rtti.NewBitVector(true, false, false, true, true)

	for _, enc := range []apis.Encoding{apis.Binary, apis.XML} {
		t.Run(enc.String(), func(t *testing.T) {
			w := stream.NewOutputStream(nil)
			require.NoError(t, rtti.ConstPointerTo(in).Serialize(w, enc))

			var out rtti.BitVector
			require.NoError(t, rtti.PointerTo(&out).Deserialize(stream.InputStreamFrom(w.Bytes()), enc))
			assert.Equal(t, in.String(), out.String())
		})
	}
}
