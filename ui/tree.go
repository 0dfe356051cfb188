package ui

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/mertwole/bencode-cli/bencode/value"
)

const (
	maxTextPreview = 48
	maxHexPreview  = 16
)

type treeNode struct {
	// path identifies the node across rebuilds of the flattened tree.
	path  string
	depth int
	label string
	value value.Value
}

func (node treeNode) isContainer() bool {
	switch node.value.(type) {
	case value.List, *value.Dictionary:
		return true
	default:
		return false
	}
}

func flattenTree(root value.Value, rootLabel string, expanded map[string]bool) []treeNode {
	nodes := make([]treeNode, 0)
	appendNode(&nodes, treeNode{path: "", depth: 0, label: rootLabel, value: root}, expanded)

	return nodes
}

func appendNode(nodes *[]treeNode, node treeNode, expanded map[string]bool) {
	*nodes = append(*nodes, node)

	if !expanded[node.path] {
		return
	}

	switch v := node.value.(type) {
	case value.List:
		for i, element := range v {
			child := treeNode{
				path:  fmt.Sprintf("%s[%d]", node.path, i),
				depth: node.depth + 1,
				label: fmt.Sprintf("[%d]", i),
				value: element,
			}
			appendNode(nodes, child, expanded)
		}
	case *value.Dictionary:
		for key, entryValue := range v.All() {
			child := treeNode{
				// Length-prefixed so that keys containing "/" stay unambiguous.
				path:  fmt.Sprintf("%s/%d:%s", node.path, len(key), key),
				depth: node.depth + 1,
				label: displayText(key),
				value: entryValue,
			}
			appendNode(nodes, child, expanded)
		}
	}
}

// expandAllPaths marks every container in the tree as expanded.
func expandAllPaths(root value.Value, expanded map[string]bool) {
	for {
		added := false
		for _, node := range flattenTree(root, "", expanded) {
			if node.isContainer() && !expanded[node.path] {
				expanded[node.path] = true
				added = true
			}
		}

		if !added {
			return
		}
	}
}

func describe(v value.Value) string {
	switch v := v.(type) {
	case value.Integer:
		return strconv.FormatInt(int64(v), 10)
	case value.ByteString:
		if isPrintable(v) {
			if len(v) > maxTextPreview {
				return strconv.Quote(string(v[:maxTextPreview])) + "…"
			}
			return strconv.Quote(string(v))
		}

		preview := hex.EncodeToString(v[:min(len(v), maxHexPreview)])
		if len(v) > maxHexPreview {
			preview += "…"
		}
		return fmt.Sprintf("<%d bytes> %s", len(v), preview)
	case value.List:
		return fmt.Sprintf("list, %s", plural(len(v), "item"))
	case *value.Dictionary:
		return fmt.Sprintf("dictionary, %s", plural(v.Len(), "key"))
	default:
		return ""
	}
}

func displayText(raw []byte) string {
	if isPrintable(raw) {
		return string(raw)
	}

	return strconv.Quote(value.ByteString(raw).Text())
}

func isPrintable(raw []byte) bool {
	for _, b := range raw {
		if b < 0x20 || b > 0x7E {
			return false
		}
	}

	return true
}

func plural(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}

	return fmt.Sprintf("%d %ss", count, noun)
}
