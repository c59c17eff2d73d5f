package protocol

// Metadata is the SAP adapter property set carried by an extension-property bundle.
// An empty field means the property was absent.
type Metadata struct {
	ComponentType      string
	TransportProtocol  string
	MessageProtocol    string
	ComponentNamespace string
	Direction          string
	Address            string
	AdapterName        string
	System             string
	IflType            string
	ActivityType       string
	CredentialName     string
	Authentication     string
	ProxyType          string
	Timeout            string
	Server             string
	Port               string
}

type field struct {
	key  string // extension property key in the document
	name string // graph property name
	get  func(*Metadata) *string
}

var fields = []field{
	{"ComponentType", "component_type", func(m *Metadata) *string { return &m.ComponentType }},
	{"TransportProtocol", "transport_protocol", func(m *Metadata) *string { return &m.TransportProtocol }},
	{"MessageProtocol", "message_protocol", func(m *Metadata) *string { return &m.MessageProtocol }},
	{"ComponentNS", "component_namespace", func(m *Metadata) *string { return &m.ComponentNamespace }},
	{"direction", "direction", func(m *Metadata) *string { return &m.Direction }},
	{"address", "address", func(m *Metadata) *string { return &m.Address }},
	{"Name", "adapter_name", func(m *Metadata) *string { return &m.AdapterName }},
	{"system", "system", func(m *Metadata) *string { return &m.System }},
	{"ifl:type", "ifl_type", func(m *Metadata) *string { return &m.IflType }},
	{"activityType", "activity_type", func(m *Metadata) *string { return &m.ActivityType }},
	{"credentialName", "credential_name", func(m *Metadata) *string { return &m.CredentialName }},
	{"authentication", "authentication", func(m *Metadata) *string { return &m.Authentication }},
	{"proxyType", "proxy_type", func(m *Metadata) *string { return &m.ProxyType }},
	{"timeout", "timeout", func(m *Metadata) *string { return &m.Timeout }},
	{"server", "server", func(m *Metadata) *string { return &m.Server }},
	{"port", "port", func(m *Metadata) *string { return &m.Port }},
}

// FromProperties maps extension key/value pairs onto Metadata. candidate reports whether the
// bundle declares any known adapter key, even with an empty value; the classifier decides
// the rest.
func FromProperties(props map[string]string) (m Metadata, candidate bool) {
	for _, f := range fields {
		if value, ok := props[f.key]; ok {
			*f.get(&m) = value
			candidate = true
		}
	}
	return m, candidate
}

// Field returns the value of a field by its graph property name.
func (m Metadata) Field(name string) string {
	for _, f := range fields {
		if f.name == name {
			return *f.get(&m)
		}
	}
	return ""
}

// Properties returns the non-empty fields keyed by graph property name.
func (m Metadata) Properties() map[string]any {
	props := make(map[string]any)
	for _, f := range fields {
		if value := *f.get(&m); value != "" {
			props[f.name] = value
		}
	}
	return props
}

// FieldNames lists every graph property name Metadata can carry, in document order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}
