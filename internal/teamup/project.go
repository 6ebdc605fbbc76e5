package teamup

// ProjectOne unwraps a singular envelope ({event: {...}}, {subcalendar:
// {...}}) into one output item tied to the input that produced it.
func ProjectOne(body Fields, key string, idx int) (OutputItem, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return OutputItem{}, &MissingEnvelopeError{Key: key}
	}
	inner, ok := raw.(map[string]any)
	if !ok {
		return OutputItem{}, &MissingEnvelopeError{Key: key}
	}
	return OutputItem{Payload: Fields(inner), SourceIndex: idx}, nil
}

// ProjectMany unwraps a plural envelope ({events: [...]}, {subcalendars:
// [...]}) into one output item per element, in server order, all sharing the
// same source index. An empty array projects to an empty slice, not an
// error. When limit is positive and the server returned more elements,
// the result is truncated client-side to the first limit elements.
//
// Array elements that are not JSON objects are dropped without error. The
// limit is applied to the raw array before the drop, so a malformed element
// within the window shrinks the output rather than pulling in a later one.
func ProjectMany(body Fields, key string, limit, idx int) ([]OutputItem, error) {
	raw, ok := body[key]
	if !ok || raw == nil {
		return nil, &MissingEnvelopeError{Key: key}
	}
	elems, ok := raw.([]any)
	if !ok {
		return nil, &MissingEnvelopeError{Key: key}
	}

	if limit > 0 && len(elems) > limit {
		elems = elems[:limit]
	}

	items := make([]OutputItem, 0, len(elems))
	for _, elem := range elems {
		payload, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, OutputItem{Payload: Fields(payload), SourceIndex: idx})
	}
	return items, nil
}

// ProjectUndo reshapes the undo response. The API signals success with an
// empty body, which is projected as a synthesized success record instead of
// an empty payload. Non-empty bodies pass through untouched.
func ProjectUndo(body Fields, undoID string, idx int) OutputItem {
	if len(body) == 0 {
		return OutputItem{
			Payload:     Fields{"success": true, "undoId": undoID, "status": "Undone"},
			SourceIndex: idx,
		}
	}
	return OutputItem{Payload: body, SourceIndex: idx}
}
