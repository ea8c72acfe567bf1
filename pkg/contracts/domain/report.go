package domain

// KeywordTypeUnknown is substituted for an empty keyword type so that
// equality filters and grouping downstream have a stable label.
const KeywordTypeUnknown = "Unknown"

// ReportHeader holds the metadata block from the top of a campaign
// export file. All fields are free-form strings copied verbatim from
// the source; any of them may be empty when the corresponding line is
// absent or malformed.
type ReportHeader struct {
	Title       string `json:"title"`
	Username    string `json:"username"`
	StoreName   string `json:"store_name"`
	SellerID    string `json:"seller_id"`
	AdName      string `json:"ad_name"`
	ProductID   string `json:"product_id"`
	GeneratedAt string `json:"generated_at"`
	TimeRange   string `json:"time_range"`
}

// AdRecord is one row of the tabular data section: the performance of
// a single keyword within the campaign. Monetary amounts are integer
// currency units. The percentage/ratio fields are carried as the
// source-formatted strings; they are never recomputed at parse time
// because the display layer shows the original text (sorting re-parses
// them in place, see dataprocessing.SortRecords).
type AdRecord struct {
	Order         int    `json:"order"`
	Keyword       string `json:"keyword"`
	KeywordType   string `json:"keyword_type"`
	SearchCommand string `json:"search_command"`
	BiddingMethod string `json:"bidding_method"`

	Views              int `json:"views"`
	Clicks             int `json:"clicks"`
	Conversions        int `json:"conversions"`
	DirectConversions  int `json:"direct_conversions"`
	ProductsSold       int `json:"products_sold"`
	DirectProductsSold int `json:"direct_products_sold"`
	GMV                int `json:"gmv"`
	DirectGMV          int `json:"direct_gmv"`
	Cost               int `json:"cost"`
	AverageRank        int `json:"average_rank"`

	ClickRate                string `json:"click_rate"`
	ConversionRate           string `json:"conversion_rate"`
	DirectConversionRate     string `json:"direct_conversion_rate"`
	CostPerConversion        string `json:"cost_per_conversion"`
	DirectCostPerConversion  string `json:"direct_cost_per_conversion"`
	ROAS                     string `json:"roas"`
	DirectROAS               string `json:"direct_roas"`
	ACOS                     string `json:"acos"`
	DirectACOS               string `json:"direct_acos"`
}

// KeywordTypeOrUnknown returns the record's keyword type with the
// empty-string case normalized to KeywordTypeUnknown.
func (r AdRecord) KeywordTypeOrUnknown() string {
	if r.KeywordType == "" {
		return KeywordTypeUnknown
	}
	return r.KeywordType
}

// MetricExtremes holds one value per aggregated metric. It is used for
// both maxima (over the full record set) and zero-excluded minima.
type MetricExtremes struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
	Cost   int `json:"cost"`
	GMV    int `json:"gmv"`
}

// Statistics is the aggregate view over one parsed record set. It is
// recomputed in full on every parse; there is no incremental update.
//
// A zero in MinValues is ambiguous between "true minimum is zero" and
// "no record had a positive value for that metric". That follows the
// source system's behavior and is a documented limitation, not a bug.
type Statistics struct {
	TotalViews       int `json:"total_views"`
	TotalClicks      int `json:"total_clicks"`
	TotalCost        int `json:"total_cost"`
	TotalGMV         int `json:"total_gmv"`
	TotalConversions int `json:"total_conversions"`

	// AverageClickRate is totalClicks/totalViews*100, 0 when there are
	// no views. AverageConversionRate is totalConversions/totalClicks*100,
	// 0 when there are no clicks.
	AverageClickRate      float64 `json:"average_click_rate"`
	AverageConversionRate float64 `json:"average_conversion_rate"`

	// TopKeywords holds up to ten records ordered by descending views.
	// It is built from a sorted copy; the canonical record order is
	// never disturbed by ranking.
	TopKeywords []AdRecord `json:"top_keywords"`

	MaxValues MetricExtremes `json:"max_values"`
	MinValues MetricExtremes `json:"min_values"`
}

// ParsedReport is the immutable result of one successful parse: the
// header metadata, the ordered record set, and the number of data rows
// that were dropped for having too few fields. A new upload replaces
// the whole value; nothing inside it is mutated after construction.
type ParsedReport struct {
	Header      ReportHeader `json:"header"`
	Records     []AdRecord   `json:"records"`
	DroppedRows int          `json:"dropped_rows"`
}
