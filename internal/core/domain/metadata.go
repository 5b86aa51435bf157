package domain

// Payload keys reserved for chunk positioning. Metadata passthrough keys
// colliding with these are dropped rather than silently overwritten.
const (
	KeyDocumentID  = "document_id"
	KeyChunkIndex  = "chunk_index"
	KeyTotalChunks = "total_chunks"
	KeyContent     = "content"
)

// Recognized metadata payload keys.
const (
	KeyFilename      = "filename"
	KeyAsignatura    = "asignatura"
	KeyTipoDocumento = "tipo_documento"
	KeyFecha         = "fecha"
	KeyTema          = "tema"
	KeyAutor         = "autor"
	KeyFuente        = "fuente"
	KeyIdioma        = "idioma"
	KeyLicencia      = "licencia"
)

// Metadata is the document-level metadata record. The named fields are the
// recognized keys; Extra carries forward-compatible unknown keys unchanged.
// No field is mandatory: absent asignatura/tipo_documento only degrades
// filterability, it never fails indexing.
type Metadata struct {
	// Filename is the original file name of the document, if any.
	Filename string

	// Asignatura is the subject name, e.g. "Lógica Difusa".
	Asignatura string

	// TipoDocumento is the document kind: "apuntes", "ejercicios", "examen".
	TipoDocumento string

	// Fecha is an ISO date string (YYYY-MM-DD). It is passed through as-is;
	// nothing in the pipeline parses it structurally.
	Fecha string

	// Tema is the topic within the subject.
	Tema string

	// Autor is the document author.
	Autor string

	// Fuente is the source, e.g. "PRADO UGR" or "Wikipedia".
	Fuente string

	// Idioma is the language code: "es" or "en".
	Idioma string

	// Licencia is the document license, e.g. "CC-BY".
	Licencia string

	// Extra holds unrecognized keys, preserved as-is on merge.
	Extra map[string]any
}

// recognized maps payload keys to field accessors for merge and decode.
var recognized = []struct {
	key string
	get func(m *Metadata) *string
}{
	{KeyFilename, func(m *Metadata) *string { return &m.Filename }},
	{KeyAsignatura, func(m *Metadata) *string { return &m.Asignatura }},
	{KeyTipoDocumento, func(m *Metadata) *string { return &m.TipoDocumento }},
	{KeyFecha, func(m *Metadata) *string { return &m.Fecha }},
	{KeyTema, func(m *Metadata) *string { return &m.Tema }},
	{KeyAutor, func(m *Metadata) *string { return &m.Autor }},
	{KeyFuente, func(m *Metadata) *string { return &m.Fuente }},
	{KeyIdioma, func(m *Metadata) *string { return &m.Idioma }},
	{KeyLicencia, func(m *Metadata) *string { return &m.Licencia }},
}

// Merge combines the document metadata with chunk positioning into a single
// flat payload record: every set recognized field, every passthrough key
// from Extra, plus chunk_index, total_chunks and document_id. Extra keys
// that collide with recognized or reserved keys are skipped so no key is
// silently overwritten.
func (m Metadata) Merge(chunkIndex, totalChunks int, documentID string) map[string]any {
	payload := make(map[string]any, len(recognized)+len(m.Extra)+3)

	for _, f := range recognized {
		if v := *f.get(&m); v != "" {
			payload[f.key] = v
		}
	}

	for k, v := range m.Extra {
		if _, taken := payload[k]; taken {
			continue
		}
		switch k {
		case KeyDocumentID, KeyChunkIndex, KeyTotalChunks, KeyContent:
			continue
		}
		payload[k] = v
	}

	payload[KeyChunkIndex] = chunkIndex
	payload[KeyTotalChunks] = totalChunks
	payload[KeyDocumentID] = documentID
	return payload
}

// MetadataFromPayload reconstructs a Metadata record from a stored payload.
// Reserved positioning keys and the chunk content are not carried into Extra.
func MetadataFromPayload(payload map[string]any) Metadata {
	var m Metadata
	for _, f := range recognized {
		if v, ok := payload[f.key].(string); ok {
			*f.get(&m) = v
		}
	}

	for k, v := range payload {
		switch k {
		case KeyDocumentID, KeyChunkIndex, KeyTotalChunks, KeyContent:
			continue
		}
		known := false
		for _, f := range recognized {
			if f.key == k {
				known = true
				break
			}
		}
		if known {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = v
	}
	return m
}

// Filter is a conjunctive set of key-value constraints narrowing search to
// matching payloads. Absent keys impose no constraint.
type Filter map[string]string

// Matches reports whether every filter condition holds for the payload.
func (f Filter) Matches(payload map[string]any) bool {
	for k, want := range f {
		got, ok := payload[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}
