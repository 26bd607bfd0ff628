package models

// TagDifficultyResult is the scored difficulty profile of one function tag.
type TagDifficultyResult struct {
	Tag       string
	CaseCount int
	Rally     int

	AvgResponseTime float64
	MedianTime      float64
	P25Time         float64
	P75Time         float64
	IQRTime         float64
	AvgRally        float64
	MacroRate       float64 // percent of cases resolved with a macro
	ConsultRate     float64 // percent of cases with a consultation
	ResponderCount  int
	CoverageRate    float64 // percent of responders who handled the tag

	TechnicalScore float64
	ResponseScore  float64
	KnowledgeScore float64
	AutoScore      float64 // composite before manual adjustment
	CompositeScore float64 // composite after manual adjustment

	TechnicalLevel Level
	ResponseLevel  Level
	KnowledgeLevel Level
	AutoLevel      Level // level the scores alone imply
	Difficulty     Level // final level, adjustment included

	Type              TagType
	RallyShare        float64
	CaseShare         float64
	BeginnerFriendly  bool
	HighConsultation  bool
	AdjustmentApplied float64
}

// CaseBand places a single case inside its tag's complexity distribution.
type CaseBand int

const (
	CaseSimple CaseBand = iota
	CaseStandard
	CaseComplex
)

// LevelBucket is one difficulty band inside a tag's case distribution.
type LevelBucket struct {
	Level        Level
	CaseCount    int
	MonthlyCount int
	Share        float64 // percent of the tag's classified cases
	AvgTime      float64
	AvgRally     float64
}

// TagDistributionResult splits a tag's cases into simple / standard / complex
// bands around the tag's base difficulty.
type TagDistributionResult struct {
	Tag           string
	BaseLevel     Level
	CaseCount     int
	SimpleLevel   Level
	StandardLevel Level
	ComplexLevel  Level
	Simple        LevelBucket
	Standard      LevelBucket
	Complex       LevelBucket
	P25Complexity float64
	P75Complexity float64
}

// SkillType labels the shape of an individual's skill profile.
type SkillType string

const (
	SkillHighPerformer SkillType = "ハイパフォーマー"
	SkillSpecialist    SkillType = "スペシャリスト"
	SkillAllRounder    SkillType = "オールラウンダー"
	SkillStandard      SkillType = "標準"
)

// ResponderSkillResult is one person's scored skill profile.
type ResponderSkillResult struct {
	Name     string
	OrgType  OrgType
	Team     string
	Category ResponderCategory

	CaseCount  int
	RallyCount int
	TagCount   int

	Width float64 // percent of all tags handled
	Depth float64 // mean handled level, weighted by tags per level

	Productivity          float64 // rallies per hour
	EffectiveProductivity float64 // productivity discounted by consultation overhead

	MacroRate     float64 // percent of own cases resolved with a macro
	QuestionCount int
	QuestionRate  float64 // percent of own responses that asked a question
	AdviceCount   int
	AdviserRate   float64 // percent of all consultations answered
	TeamMatchRate float64 // percent of responses inside own primary or secondary teams
	WorkTimeRatio float64

	ComplexCaseTags int    // tags handled at their complex band
	HighLevelTags   int    // tags whose technical level is L4/L5
	LevelTagCounts  [5]int // tags per highest handled level, L1..L5

	Type       SkillType
	TotalScore float64

	TagLevels map[string]Level // highest level reached per tag
}

// CategoryStats aggregates one responder category's workload inside a team.
type CategoryStats struct {
	Category     ResponderCategory
	Members      int
	CaseCount    int
	RallyCount   int
	TotalTime    float64
	Productivity float64 // rallies per hour
	RallyRate    float64 // percent of team rallies
	QuestionRate float64 // percent of rallies that raised a question
	AdviceRate   float64 // percent of team consultations answered

	// EffectiveProductivity discounts the raw productivity by the team's
	// consultation overhead.
	EffectiveProductivity float64

	TargetRallyRate    float64
	TargetProductivity float64
}

// HeadcountStatus grades the gap between actual and ideal primary headcount.
type HeadcountStatus string

const (
	HeadcountSurplus  HeadcountStatus = "余剰"
	HeadcountBalanced HeadcountStatus = "適正"
	HeadcountTight    HeadcountStatus = "不足気味"
	HeadcountShort    HeadcountStatus = "不足"
)

// TeamMemberStats is one rostered member's row in a team's productivity
// ranking.
type TeamMemberStats struct {
	Name                  string
	OrgType               OrgType
	RallyCount            int
	Productivity          float64
	EffectiveProductivity float64
	QuestionCount         int
	QuestionRate          float64 // questions per own rally
	AdviceCount           int
	AdviceRate            float64 // percent of team consultations answered
	ContributionRate      float64 // percent of team rallies
}

// TeamProductivityResult is one team's category breakdown plus its headcount
// model.
type TeamProductivityResult struct {
	Team       string
	CaseCount  int
	RallyCount int

	Categories [4]CategoryStats
	Members    []TeamMemberStats // rally-active members, productivity descending

	CompletionRate   float64 // internal-primary share of team rallies
	TeamQuestionRate float64 // consultations per rally

	PrimaryMembers    int // internal members whose primary team this is
	IdealHeadcount    float64
	AdjustedHeadcount float64
	HeadcountGap      float64
	Status            HeadcountStatus
}

// ResponderAreaDetail is one responder's footprint inside an area.
type ResponderAreaDetail struct {
	Name         string
	Category     ResponderCategory
	CaseCount    int
	RallyCount   int
	TagCount     int
	Productivity float64
}

// AreaCoverageResult describes how well a functional area's tags are covered,
// with the same category breakdown and headcount model the team view carries.
type AreaCoverageResult struct {
	Area           string
	TagCount       int
	CaseCount      int
	RallyCount     int
	HighLevelTags  int     // tags at L4/L5
	MemberCoverage float64 // internal-primary responders per area tag

	Categories [4]CategoryStats // Members holds the responder count per category

	ConsultationCount int
	CompletionRate    float64 // internal-primary share of area rallies
	AreaQuestionRate  float64 // consultations per rally

	IdealHeadcount    float64
	AdjustedHeadcount float64

	Responders []ResponderAreaDetail
}

// FlowStats is one asker-category x adviser-category cell of a team's
// consultation matrix.
type FlowStats struct {
	Count           int
	Rally           int
	AvgResponseTime float64
	AvgSolveTime    float64
}

// TagFlowProfile is the dominant consultation direction of one tag.
type TagFlowProfile struct {
	Tag             string
	Count           int
	DominantAsker   ResponderCategory
	DominantAdviser ResponderCategory
}

// PairFlow is a recurring asker->adviser pair.
type PairFlow struct {
	Asker            string
	Adviser          string
	Count            int
	Rally            int
	AvgSolveTime     float64
	PairProductivity float64 // rallies per hour of solve time
	Tags             []string
}

// FlowPriority grades how urgently a team's consultation load needs action.
type FlowPriority string

const (
	PriorityHigh   FlowPriority = "高"
	PriorityMedium FlowPriority = "中"
	PriorityLow    FlowPriority = "低"
	PriorityNone   FlowPriority = "なし"
)

// TeamConsultationResult is one team's consultation-flow analysis.
type TeamConsultationResult struct {
	Team              string
	ConsultationCount int
	ConsultationShare float64 // percent of team cases with a consultation
	AvgSolveTime      float64

	Matrix   [4][4]FlowStats // indexed by AllCategories order
	TagFlows []TagFlowProfile
	Pairs    []PairFlow

	Priority FlowPriority
	Points   int
	Actions  []string
}

// Result bundles the outputs of one full analysis run.
type Result struct {
	Difficulties  []TagDifficultyResult
	Distributions []TagDistributionResult
	Skills        []ResponderSkillResult
	Teams         []TeamProductivityResult
	Areas         []AreaCoverageResult
	Consultations []TeamConsultationResult
}
