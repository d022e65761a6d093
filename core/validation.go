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

import "fmt"

// ValidateNode validates a Node according to domain rules.
//
// Validation rules:
//   - Node must not be nil
//   - Content must not be empty
//
// NOT validated (populated by transformations):
//   - Vector (can be empty until the embedding transformation runs)
//   - Metadata (optional)
//   - Id (empty is valid for documents; readers and splitters assign IDs)
func ValidateNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if node.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrEmptyContent)
	}

	return nil
}
