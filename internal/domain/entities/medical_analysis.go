package entities

// MedicalAnalysis is the root artefact payload: the transcription and entity
// extraction output every downstream artefact is derived from. Downstream
// generation clients treat it as opaque JSON; this struct exists for the
// producer side.
type MedicalAnalysis struct {
	Transcript      string           `json:"transcript"`
	SpeakerSegments []SpeakerSegment `json:"speaker_segments,omitempty"`
	Entities        []MedicalEntity  `json:"entities,omitempty"`
	SourceAudio     string           `json:"source_audio,omitempty"`
	TranscribeJob   string           `json:"transcribe_job,omitempty"`
}

// SpeakerSegment is one diarized span of the transcript.
type SpeakerSegment struct {
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// MedicalEntity is one clinical entity detected in the transcript.
type MedicalEntity struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Type     string   `json:"type"`
	Score    float64  `json:"score"`
	Traits   []string `json:"traits,omitempty"`
}
