package domain

// RefPointer extracts the pointer string from a reference node. A node is a
// reference node when it is a map carrying a $ref key.
func RefPointer(node interface{}) (string, bool) {
	m, ok := node.(map[string]interface{})
	if !ok {
		return "", false
	}
	v, ok := m["$ref"]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}
