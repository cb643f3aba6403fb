package transcribe

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/soterohealth/medscribe/internal/domain/entities"
	apperrors "github.com/soterohealth/medscribe/pkg/errors"
)

// transcriptDocument mirrors the JSON Transcribe writes to the output bucket.
// Times come back as decimal strings.
type transcriptDocument struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		SpeakerLabels *struct {
			Segments []struct {
				SpeakerLabel string `json:"speaker_label"`
				StartTime    string `json:"start_time"`
				EndTime      string `json:"end_time"`
			} `json:"segments"`
		} `json:"speaker_labels"`
		Items []transcriptItem `json:"items"`
	} `json:"results"`
}

type transcriptItem struct {
	Type         string `json:"type"`
	StartTime    string `json:"start_time"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

// assembleAnalysis turns the raw transcript document into a MedicalAnalysis:
// full transcript text plus one diarized segment per speaker turn, each
// segment's text rebuilt from the pronunciation items inside its time span.
func assembleAnalysis(body []byte) (*entities.MedicalAnalysis, error) {
	var doc transcriptDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.NewExternalError("transcript document does not decode", err)
	}
	if len(doc.Results.Transcripts) == 0 {
		return nil, apperrors.NewExternalError("transcript document has no transcript", nil)
	}

	analysis := &entities.MedicalAnalysis{
		Transcript: doc.Results.Transcripts[0].Transcript,
	}

	if doc.Results.SpeakerLabels == nil {
		return analysis, nil
	}

	for _, segment := range doc.Results.SpeakerLabels.Segments {
		start, err1 := strconv.ParseFloat(segment.StartTime, 64)
		end, err2 := strconv.ParseFloat(segment.EndTime, 64)
		if err1 != nil || err2 != nil {
			continue
		}

		var words []string
		for _, item := range doc.Results.Items {
			if item.Type != "pronunciation" || item.StartTime == "" || len(item.Alternatives) == 0 {
				continue
			}
			at, err := strconv.ParseFloat(item.StartTime, 64)
			if err != nil || at < start || at > end {
				continue
			}
			words = append(words, item.Alternatives[0].Content)
		}

		analysis.SpeakerSegments = append(analysis.SpeakerSegments, entities.SpeakerSegment{
			Speaker:   segment.SpeakerLabel,
			Text:      strings.Join(words, " "),
			StartTime: start,
			EndTime:   end,
		})
	}

	return analysis, nil
}

// parseTranscriptURI extracts bucket and key from the transcript file URI,
// which Transcribe reports either as an s3:// URI or one of two HTTPS forms.
func parseTranscriptURI(uri string) (bucket, key string, err error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		rest := strings.TrimPrefix(uri, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", apperrors.NewExternalError("unsupported transcript URI "+uri, nil)
		}
		return parts[0], parts[1], nil

	case strings.HasPrefix(uri, "https://"):
		rest := strings.TrimPrefix(uri, "https://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[1] == "" {
			return "", "", apperrors.NewExternalError("unsupported transcript URI "+uri, nil)
		}
		host := parts[0]
		if strings.HasPrefix(host, "s3.") {
			// s3.<region>.amazonaws.com/<bucket>/<key>
			sub := strings.SplitN(parts[1], "/", 2)
			if len(sub) != 2 || sub[0] == "" || sub[1] == "" {
				return "", "", apperrors.NewExternalError("unsupported transcript URI "+uri, nil)
			}
			return sub[0], sub[1], nil
		}
		// <bucket>.s3.<region>.amazonaws.com/<key>
		return strings.SplitN(host, ".", 2)[0], parts[1], nil

	default:
		return "", "", apperrors.NewExternalError("unsupported transcript URI "+uri, nil)
	}
}
