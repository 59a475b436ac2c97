package core

import "maps"

// Merge combines two chunks into one, with b treated as the later arrival.
// Field rules:
//
//   - Content: text concatenates; if either side carries Parts the result is
//     the part-list concatenation, with plain text promoted to a single
//     TextPart and adjacent text parts coalesced.
//   - ToolCalls: pieces are grouped by Index (first-seen order preserved);
//     within a group Name and Arguments substrings concatenate and the first
//     non-empty ID is retained.
//   - FinishReason: the later defined value wins; an absent later value never
//     erases an earlier one.
//   - Metadata / ResponseMetadata: key-wise union, later values win on
//     collision, nested maps merge recursively, nested sequences concatenate.
//   - Usage: the later non-nil value replaces the earlier.
//   - ID: the first non-empty value wins.
//
// Merge only inspects the two chunks being combined, which makes it
// associative: Merge(Merge(a, b), c) == Merge(a, Merge(b, c)). The zero
// Chunk is a two-sided identity. Neither input is mutated.
func Merge(a, b Chunk) Chunk {
	out := Chunk{
		ID:           a.ID,
		FinishReason: a.FinishReason,
		Usage:        a.Usage,
	}
	if out.ID == "" {
		out.ID = b.ID
	}
	if b.FinishReason != "" {
		out.FinishReason = b.FinishReason
	}
	if b.Usage != nil {
		out.Usage = b.Usage
	}

	out.Content, out.Parts = mergeContent(a, b)
	out.ToolCalls = mergeToolCalls(a.ToolCalls, b.ToolCalls)
	out.Metadata = mergeMaps(a.Metadata, b.Metadata)
	out.ResponseMetadata = mergeMaps(a.ResponseMetadata, b.ResponseMetadata)

	return out
}

// mergeContent combines the content field of two chunks. While both sides are
// plain text the result stays plain text; once either side carries parts both
// sides are promoted to part lists and concatenated.
func mergeContent(a, b Chunk) (string, []Part) {
	if len(a.Parts) == 0 && len(b.Parts) == 0 {
		return a.Content + b.Content, nil
	}
	return "", appendParts(asParts(a), asParts(b))
}

// asParts views a chunk's content as a part list, promoting plain text to a
// single TextPart.
func asParts(c Chunk) []Part {
	if len(c.Parts) > 0 {
		return c.Parts
	}
	if c.Content != "" {
		return []Part{TextPart{Text: c.Content}}
	}
	return nil
}

// appendParts concatenates two part lists. Adjacent TextParts across the
// junction coalesce into one; without this, promoting text to a one-part
// list would make the result depend on merge grouping and break
// associativity.
func appendParts(a, b []Part) []Part {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]Part, 0, len(a)+len(b))
	out = append(out, a...)
	for _, p := range b {
		if tp, ok := p.(TextPart); ok {
			if last, ok := out[len(out)-1].(TextPart); ok {
				out[len(out)-1] = TextPart{
					Text:     last.Text + tp.Text,
					Metadata: mergeMaps(last.Metadata, tp.Metadata),
				}
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// mergeToolCalls combines tool-call pieces, pairing pieces that share an
// Index and appending unseen indices in arrival order.
func mergeToolCalls(a, b []ToolCallChunk) []ToolCallChunk {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]ToolCallChunk, len(a), len(a)+len(b))
	copy(out, a)
	pos := make(map[int]int, len(out))
	for i, tc := range out {
		if _, ok := pos[tc.Index]; !ok {
			pos[tc.Index] = i
		}
	}
	for _, tc := range b {
		if i, ok := pos[tc.Index]; ok {
			out[i] = mergeToolCall(out[i], tc)
			continue
		}
		pos[tc.Index] = len(out)
		out = append(out, tc)
	}
	return out
}

// mergeToolCall pairs two pieces of the same tool call: substrings
// concatenate, the first non-empty id sticks.
func mergeToolCall(a, b ToolCallChunk) ToolCallChunk {
	out := ToolCallChunk{
		Index:     a.Index,
		ID:        a.ID,
		Name:      a.Name + b.Name,
		Arguments: a.Arguments + b.Arguments,
	}
	if out.ID == "" {
		out.ID = b.ID
	}
	return out
}

// mergeMaps performs the recursive key-wise union used for metadata fields.
// Later (b) values win on collision, nested string-keyed maps merge
// recursively and nested sequences concatenate. When one side is empty the
// other is returned as-is; callers must treat chunk maps as immutable.
func mergeMaps(a, b map[string]any) map[string]any {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	for k, vb := range b {
		va, ok := out[k]
		if !ok {
			out[k] = vb
			continue
		}
		switch vb := vb.(type) {
		case map[string]any:
			if va, ok := va.(map[string]any); ok {
				out[k] = mergeMaps(va, vb)
				continue
			}
		case []any:
			if va, ok := va.([]any); ok {
				joined := make([]any, 0, len(va)+len(vb))
				joined = append(joined, va...)
				joined = append(joined, vb...)
				out[k] = joined
				continue
			}
		}
		out[k] = vb
	}
	return out
}
