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


package storage

import (
	"fmt"

	"github.com/poiesic/docpipe/core"
)

// MarshalNode serializes a Node to bytes.
func MarshalNode(node *core.Node) []byte {
	buf := make([]byte, core.NodeMUS.Size(*node))
	core.NodeMUS.Marshal(*node, buf)
	return buf
}

// UnmarshalNode deserializes a Node from bytes.
func UnmarshalNode(data []byte) (*core.Node, error) {
	node, _, err := core.NodeMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &node, nil
}

// MarshalNodes serializes a node batch to bytes, preserving order.
func MarshalNodes(nodes []*core.Node) []byte {
	batch := make([]core.Node, len(nodes))
	for i, n := range nodes {
		batch[i] = *n
	}
	buf := make([]byte, core.NodesMUS.Size(batch))
	core.NodesMUS.Marshal(batch, buf)
	return buf
}

// UnmarshalNodes deserializes a node batch from bytes.
func UnmarshalNodes(data []byte) ([]*core.Node, error) {
	batch, _, err := core.NodesMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	nodes := make([]*core.Node, len(batch))
	for i := range batch {
		nodes[i] = &batch[i]
	}
	return nodes, nil
}
