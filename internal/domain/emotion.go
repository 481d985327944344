package domain

// EmotionScores holds the eight emotion magnitudes reported for a face.
// Values are kept exactly as returned by the analysis backend.
type EmotionScores struct {
	Anger     float64 `json:"anger"`
	Contempt  float64 `json:"contempt"`
	Disgust   float64 `json:"disgust"`
	Fear      float64 `json:"fear"`
	Happiness float64 `json:"happiness"`
	Neutral   float64 `json:"neutral"`
	Sadness   float64 `json:"sadness"`
	Surprise  float64 `json:"surprise"`
}

// EmotionField names one score and knows how to read it.
type EmotionField struct {
	Name string
	Get  func(EmotionScores) float64
}

// EmotionFields is the display order of the emotion list.
var EmotionFields = []EmotionField{
	{"anger", func(e EmotionScores) float64 { return e.Anger }},
	{"contempt", func(e EmotionScores) float64 { return e.Contempt }},
	{"disgust", func(e EmotionScores) float64 { return e.Disgust }},
	{"fear", func(e EmotionScores) float64 { return e.Fear }},
	{"happiness", func(e EmotionScores) float64 { return e.Happiness }},
	{"neutral", func(e EmotionScores) float64 { return e.Neutral }},
	{"sadness", func(e EmotionScores) float64 { return e.Sadness }},
	{"surprise", func(e EmotionScores) float64 { return e.Surprise }},
}

type EmotionRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (e EmotionScores) Rows() []EmotionRow {
	rows := make([]EmotionRow, len(EmotionFields))
	for i, f := range EmotionFields {
		rows[i] = EmotionRow{Name: f.Name, Value: f.Get(e)}
	}
	return rows
}

// Dominant returns the name of the highest score. Ties go to the field that
// comes first in EmotionFields.
func (e EmotionScores) Dominant() string {
	best := EmotionFields[0]
	bestVal := best.Get(e)
	for _, f := range EmotionFields[1:] {
		if v := f.Get(e); v > bestVal {
			best, bestVal = f, v
		}
	}
	return best.Name
}
