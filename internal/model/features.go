package model

// -------------------- DERIVED FEATURE MODELS --------------------

// FeatureRow holds the behavioral/temporal features for one user. One row
// exists per user that appears in the login log; per-day rates are 0 (not
// missing) when the user has no events of that kind.
type FeatureRow struct {
	User               string  `json:"user" db:"user_id"`
	MeanLoginHour      float64 `json:"mean_login_hour" db:"mean_login_hour"`
	MeanLogoutHour     float64 `json:"mean_logout_hour" db:"mean_logout_hour"`
	FilesPerDay        float64 `json:"files_per_day" db:"files_per_day"`
	UsbPerDay          float64 `json:"usb_per_day" db:"usb_per_day"`
	EmailsPerDay       float64 `json:"emails_per_day" db:"emails_per_day"`
	OutOfSessionAccess float64 `json:"out_of_session_access" db:"out_of_session_access"`
}

// GraphFeatureRow holds centrality features for one user node. Users with no
// file or USB activity have no graph node and therefore no row here.
type GraphFeatureRow struct {
	User                  string  `json:"user" db:"user_id"`
	DegreeCentrality      float64 `json:"degree_centrality" db:"degree_centrality"`
	BetweennessCentrality float64 `json:"betweenness_centrality" db:"betweenness_centrality"`
}

// ContentFeatureRow holds per-user means of the lexical email features.
// Users who sent no email have no row here.
type ContentFeatureRow struct {
	User        string  `json:"user" db:"user_id"`
	KeywordFlag float64 `json:"keyword_flag" db:"keyword_flag"`
	SubjectLen  float64 `json:"subject_len" db:"subject_len"`
	Sentiment   float64 `json:"sentiment" db:"sentiment"`
}

// MergedFeatureRow is the left join of the three feature sets on the
// behavioral table, with gaps zero-filled and the red-team label attached.
type MergedFeatureRow struct {
	User                  string  `json:"user" db:"user_id"`
	MeanLoginHour         float64 `json:"mean_login_hour" db:"mean_login_hour"`
	MeanLogoutHour        float64 `json:"mean_logout_hour" db:"mean_logout_hour"`
	FilesPerDay           float64 `json:"files_per_day" db:"files_per_day"`
	UsbPerDay             float64 `json:"usb_per_day" db:"usb_per_day"`
	EmailsPerDay          float64 `json:"emails_per_day" db:"emails_per_day"`
	OutOfSessionAccess    float64 `json:"out_of_session_access" db:"out_of_session_access"`
	DegreeCentrality      float64 `json:"degree_centrality" db:"degree_centrality"`
	BetweennessCentrality float64 `json:"betweenness_centrality" db:"betweenness_centrality"`
	KeywordFlag           float64 `json:"keyword_flag" db:"keyword_flag"`
	SubjectLen            float64 `json:"subject_len" db:"subject_len"`
	Sentiment             float64 `json:"sentiment" db:"sentiment"`
	IsRedTeam             bool    `json:"is_red_team" db:"is_red_team"`
}

// MergedFeatureColumns is the fixed numeric column order fed to the
// detectors. The user key and the red-team label are deliberately excluded.
var MergedFeatureColumns = []string{
	"mean_login_hour",
	"mean_logout_hour",
	"files_per_day",
	"usb_per_day",
	"emails_per_day",
	"out_of_session_access",
	"degree_centrality",
	"betweenness_centrality",
	"keyword_flag",
	"subject_len",
	"sentiment",
}

// Vector returns the numeric features in MergedFeatureColumns order.
func (r *MergedFeatureRow) Vector() []float64 {
	return []float64{
		r.MeanLoginHour,
		r.MeanLogoutHour,
		r.FilesPerDay,
		r.UsbPerDay,
		r.EmailsPerDay,
		r.OutOfSessionAccess,
		r.DegreeCentrality,
		r.BetweennessCentrality,
		r.KeywordFlag,
		r.SubjectLen,
		r.Sentiment,
	}
}
