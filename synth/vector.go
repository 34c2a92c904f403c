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
	"dirpx.dev/rtti/typeinfo"
)

type vectorOps = *typeinfo.VectorOps

var vectorChain = []candidate[vectorOps]{
	{"native", (*plan).vectorNative},
	{"proxy", (*plan).vectorProxy},
	{"methods", (*plan).vectorMethods},
}

func (p *plan) vectorNative() (vectorOps, bool, error) {
	if p.seq.kind != seqSlice {
		return nil, false, nil
	}
	return p.vectorOps(), true, nil
}

func (p *plan) vectorProxy() (vectorOps, bool, error) {
	if p.seq.kind != seqMethods || !p.seq.proxy {
		return nil, false, nil
	}
	return p.vectorOps(), true, nil
}

func (p *plan) vectorMethods() (vectorOps, bool, error) {
	if p.seq.kind != seqMethods {
		return nil, false, nil
	}
	return p.vectorOps(), true, nil
}

func (p *plan) vectorOps() *typeinfo.VectorOps {
	s := p.seq
	return &typeinfo.VectorOps{
		Element: s.at,
		Size:    s.size,
		Resize:  s.resize,
	}
}

