package normalize

// AliasTableVersion is bumped whenever an alias is added, removed or
// reordered, since order decides which upstream field wins.
const AliasTableVersion = 3

// Field is a logical player attribute.
type Field string

// Logical attributes resolved from raw records.
const (
	FieldID            Field = "id"
	FieldName          Field = "name"
	FieldClub          Field = "club"
	FieldNation        Field = "nation"
	FieldPosition      Field = "position"
	FieldSeason        Field = "season"
	FieldAge           Field = "age"
	FieldCurrentRating Field = "current_rating"
	FieldPeakPotential Field = "peak_potential"
	FieldMatches       Field = "matches"
	FieldMinutes       Field = "minutes"
	FieldGoals         Field = "goals"
	FieldAssists       Field = "assists"
	FieldStarts        Field = "starts"
	FieldGoalsPer90    Field = "goals_per_90"
	FieldMLDevelopment Field = "ml_development_score"
	FieldBasePerf      Field = "base_performance_score"
	FieldPlayingTime   Field = "playing_time_score"
	FieldIssues        Field = "issues"
)

// Aliases lists upstream field names per attribute in priority order. The
// first alias is always the canonical name emitted by Flatten and by the
// JSON encoding of model.Player.
var Aliases = map[Field][]string{
	FieldID:            {"id", "player_id", "PlayerID"},
	FieldName:          {"name", "player_name", "Player"},
	FieldClub:          {"club", "Squad_std", "team", "Squad"},
	FieldNation:        {"nation", "Nation_std", "Nation"},
	FieldPosition:      {"position", "Pos_std", "pos", "Pos"},
	FieldSeason:        {"season", "Season"},
	FieldAge:           {"age", "Age_std", "Age"},
	FieldCurrentRating: {"current_rating", "CurrentRating", "currentRating", "performance_score", "PerformanceScore"},
	FieldPeakPotential: {"peak_potential", "PredictedPotential", "peakPotential", "predicted_potential", "potential_score"},
	FieldMatches:       {"matches", "Playing Time_MP_raw", "Playing Time_MP_std", "matches_played_display", "MP"},
	FieldMinutes:       {"minutes", "Playing Time_Min_raw", "Playing Time_Min_std", "Min"},
	FieldGoals:         {"goals", "Performance_Gls", "Gls"},
	FieldAssists:       {"assists", "Performance_Ast", "Ast"},
	FieldStarts:        {"starts", "Playing Time_Starts", "Starts_Starts"},
	FieldGoalsPer90:    {"goals_per_90", "Per 90 Minutes_Gls", "goalsPer90"},
	FieldMLDevelopment: {"ml_development_score", "mlDevelopmentScore", "MLDevelopmentScore"},
	FieldBasePerf:      {"base_performance_score", "basePerformanceScore", "BasePerformanceScore"},
	FieldPlayingTime:   {"playing_time_score", "playingTimeScore", "PlayingTimeScore"},
	FieldIssues:        {"issues", "data_quality_issues"},
}

// Raw is an upstream player record as decoded from JSON.
type Raw map[string]any

// Lookup returns the first present, non-nil alias value for f.
func (r Raw) Lookup(f Field) (any, bool) {
	for _, key := range Aliases[f] {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Raw) value(f Field) any {
	v, _ := r.Lookup(f)
	return v
}
