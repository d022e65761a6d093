package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %s vs %s", id1, id2)
			}
			if len(id1) != 16 {
				t.Errorf("IDFromContent() returned unexpected length %d", len(id1))
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNode_FullContent(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "content only",
			node: Node{Content: "hello"},
			want: "hello",
		},
		{
			name: "metadata in sorted key order",
			node: Node{
				Content: "hello",
				Metadata: map[string]string{
					"zeta":  "last",
					"alpha": "first",
				},
			},
			want: "hello\nalpha: first\nzeta: last",
		},
		{
			name: "empty content with metadata",
			node: Node{
				Metadata: map[string]string{"path": "/tmp/a.txt"},
			},
			want: "\npath: /tmp/a.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.node.FullContent()
			if got != tt.want {
				t.Errorf("FullContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNode_FullContent_Stable(t *testing.T) {
	node := Node{
		Content: "body",
		Metadata: map[string]string{
			"a": "1", "b": "2", "c": "3", "d": "4", "e": "5",
		},
	}

	first := node.FullContent()
	for i := 0; i < 20; i++ {
		if got := node.FullContent(); got != first {
			t.Fatalf("FullContent() unstable across calls: %q vs %q", got, first)
		}
	}
}
