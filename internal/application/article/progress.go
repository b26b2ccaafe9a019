package article

// Stage 生成阶段
type Stage string

const (
	StageOutline Stage = "outline"
	StageContent Stage = "content"
	StageSummary Stage = "summary"
	StageEditor  Stage = "editor"
	StageDone    Stage = "done"
)

// Progress 进度事件
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc 进度回调，在执行阶段的 goroutine 中同步调用
type ProgressFunc func(Progress)

type stageSpec struct {
	percent int
	message string
	failure string
}

var stageSpecs = map[Stage]stageSpec{
	StageOutline: {percent: 25, message: "正在创建大纲...", failure: "大纲生成失败"},
	StageContent: {percent: 50, message: "正在写作内容...", failure: "内容生成失败"},
	StageSummary: {percent: 75, message: "正在生成总结和关键词...", failure: "总结生成失败"},
	StageEditor:  {percent: 90, message: "正在整合文章...", failure: "文章整合失败"},
	StageDone:    {percent: 100, message: "文章生成完成！"},
}

// ProgressOf 阶段对应的进度事件
func ProgressOf(stage Stage) Progress {
	st := stageSpecs[stage]
	return Progress{Stage: stage, Percent: st.percent, Message: st.message}
}

func report(fn ProgressFunc, stage Stage) {
	if fn != nil {
		fn(ProgressOf(stage))
	}
}
