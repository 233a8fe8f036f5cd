package workflow

// StageProgress 进度报告中的单个阶段条目
type StageProgress struct {
	Stage      Stage
	Status     Status
	CanSubmit  bool
	Submission *Submission
	Review     *Review
}

// Report 单个学生的有序进度报告
type Report struct {
	Stages []StageProgress
	// Completed 已完成阶段数：审阅通过，或选题已提交
	Completed int
	// CurrentStage 第一个未完成的阶段；全部完成时为最后一个阶段
	CurrentStage Stage
	Finished     bool
}

// Progress 按固定阶段顺序汇总进度，只读
// 论文三个阶段从同一论文记录池按 stage 字段分别汇总
func (rs RecordSet) Progress() Report {
	report := Report{Stages: make([]StageProgress, 0, len(Stages))}

	for _, stage := range Stages {
		sub, rev := rs.Current(stage)
		entry := StageProgress{
			Stage:      stage,
			Status:     statusOf(sub, rev),
			CanSubmit:  rs.CanSubmit(stage),
			Submission: sub,
			Review:     rev,
		}
		report.Stages = append(report.Stages, entry)

		if done(entry) {
			report.Completed++
		} else if report.CurrentStage == "" {
			report.CurrentStage = stage
		}
	}

	if report.CurrentStage == "" {
		report.CurrentStage = Stages[len(Stages)-1]
		report.Finished = true
	}

	return report
}

func done(p StageProgress) bool {
	if !p.Stage.Reviewed() {
		return p.Status == StatusSubmitted
	}
	return p.Status == StatusPass
}
