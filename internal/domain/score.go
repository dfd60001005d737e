package domain

import (
	"encoding/json"
	"strconv"
)

const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Score - оценка по шкале 0..10. Valid=false означает, что модель оценку не дала
// (null в JSON), и мы ее не выдумываем.
type Score struct {
	Value float64
	Valid bool
}

// NoScore - отсутствующая оценка
var NoScore = Score{}

// NewScore всегда клампит в [0,10], значения вне диапазона не отклоняются
func NewScore(v float64) Score {
	return Score{Value: ClampScore(v), Valid: true}
}

func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func (s Score) String() string {
	if !s.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + "/10"
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoScore
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = NewScore(v)
	return nil
}
