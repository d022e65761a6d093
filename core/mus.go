// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// MUS serializers for cache payloads. Hand-written: the cache stores a
// single small struct, so there is no codegen step.
var (
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)

	// NodeMUS serializes a single Node.
	NodeMUS = nodeMUS{}

	// NodesMUS serializes an ordered batch of Nodes.
	NodesMUS = ord.NewSliceSer[Node](NodeMUS)
)

var _ mus.Serializer[Node] = nodeMUS{}

type nodeMUS struct{}

func (nodeMUS) Marshal(v Node, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceId, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return
}

func (nodeMUS) Unmarshal(bs []byte) (v Node, n int, err error) {
	var n1 int
	v.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.SourceId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	// The map and slice deserializers allocate even for zero elements.
	// Normalize back to nil so a decoded Node compares equal to the one
	// that was encoded.
	if len(v.Metadata) == 0 {
		v.Metadata = nil
	}
	if len(v.Vector) == 0 {
		v.Vector = nil
	}
	return
}

func (nodeMUS) Size(v Node) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.SourceId)
	size += ord.String.Size(v.Content)
	size += metadataMUS.Size(v.Metadata)
	size += vectorMUS.Size(v.Vector)
	return
}

func (nodeMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = metadataMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	return
}
