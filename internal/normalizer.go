package internal

import (
	"encoding/json"
	"strings"
)

const (
	unknownCollectionName = "Unknown Collection"
	noResponseText        = "No response received"
)

// errorMessageKeys are checked in priority order
var errorMessageKeys = []string{"message", "error", "detail", "msg"}

// NormalizeCollections converts any supported collections payload to a list.
// Supported shapes: a bare array, {"collections": [...]}, and a mapping of
// collection name to details.
func NormalizeCollections(p Payload) []CollectionRef {
	switch p.Kind {
	case PayloadArray:
		return normalizeCollectionArray(p.Array)
	case PayloadObject:
		if raw, ok := p.Get("collections"); ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil && items != nil {
				return normalizeCollectionArray(items)
			}
		}
		return normalizeCollectionMap(p.Object)
	default:
		return []CollectionRef{}
	}
}

func normalizeCollectionArray(items []json.RawMessage) []CollectionRef {
	refs := make([]CollectionRef, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			refs = append(refs, CollectionRef{Name: name})
			continue
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			LogDebug("Skipping collection entry of unexpected shape: %s", string(item))
			continue
		}
		refs = append(refs, collectionFromFields(collectionName(fields), fields))
	}
	return refs
}

func normalizeCollectionMap(members []Field) []CollectionRef {
	refs := make([]CollectionRef, 0, len(members))
	for _, m := range members {
		var fields map[string]interface{}
		if err := json.Unmarshal(m.Value, &fields); err != nil {
			fields = nil
		}
		// the key names the collection even if the value carries its own name
		delete(fields, "name")
		refs = append(refs, collectionFromFields(m.Key, fields))
	}
	return refs
}

// collectionName picks the first usable identifier of a collection object
func collectionName(fields map[string]interface{}) string {
	for _, key := range []string{"name", "collection_name", "id"} {
		switch v := fields[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return jsonNumber(v)
		}
	}
	return unknownCollectionName
}

func jsonNumber(f float64) string {
	data, _ := json.Marshal(f)
	return string(data)
}

func collectionFromFields(name string, fields map[string]interface{}) CollectionRef {
	ref := CollectionRef{Name: name}
	for key, value := range fields {
		switch key {
		case "name":
			continue
		case "count":
			if n, ok := value.(float64); ok {
				count := int(n)
				ref.Count = &count
				continue
			}
		case "description":
			if s, ok := value.(string); ok {
				ref.Description = s
				continue
			}
		}
		if ref.Extra == nil {
			ref.Extra = make(map[string]interface{})
		}
		ref.Extra[key] = value
	}
	return ref
}

// CollectionNames returns just the names, in order
func CollectionNames(refs []CollectionRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

// ExtractErrorMessage pulls a human readable message out of an error body:
// the first non-empty of message, error, detail, msg. A body that is not
// JSON is returned as text; anything else gets fallback.
func ExtractErrorMessage(body []byte, fallback string) string {
	p := DecodePayload(body)
	switch p.Kind {
	case PayloadObject:
		for _, key := range errorMessageKeys {
			raw, ok := p.Get(key)
			if !ok {
				continue
			}
			if msg := messageFromRaw(raw); msg != "" {
				return msg
			}
		}
	case PayloadText:
		if text := strings.TrimSpace(p.Text); text != "" {
			return text
		}
	}
	return fallback
}

// messageFromRaw renders strings as-is and structured values (FastAPI puts
// validation error lists in "detail") as compact JSON. Falsy values are
// treated as absent.
func messageFromRaw(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if !val {
			return ""
		}
	case float64:
		if val == 0 {
			return ""
		}
	}

	compact, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(compact)
}

// ExtractReplyText picks the text to show for a chat reply
func ExtractReplyText(p Payload) string {
	switch p.Kind {
	case PayloadObject:
		for _, key := range []string{"message", "response"} {
			if raw, ok := p.Get(key); ok {
				if msg := messageFromRaw(raw); msg != "" {
					return msg
				}
			}
		}
	case PayloadText:
		if text := strings.TrimSpace(p.Text); text != "" {
			return text
		}
	case PayloadScalar:
		var s string
		if err := json.Unmarshal([]byte(p.Text), &s); err == nil && s != "" {
			return s
		}
	}
	return noResponseText
}

// InterpretHealth maps a successful health payload to a state. Payloads
// without a recognized signal count as healthy.
func InterpretHealth(p Payload) HealthState {
	status, _ := p.String("status")
	healthy, hasHealthy := p.Bool("healthy")
	health, _ := p.String("health")

	switch {
	case status == "healthy" || (hasHealthy && healthy) || health == "ok":
		return HealthHealthy
	case status == "unhealthy" || (hasHealthy && !healthy):
		return HealthUnhealthy
	default:
		return HealthHealthy
	}
}
