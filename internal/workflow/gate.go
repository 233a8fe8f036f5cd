package workflow

// CanSubmit 判断学生是否可以在 stage 提交
//
// 要求 stage 之前每个需审阅的阶段，其最新提交的最新审阅结论均为 pass。
// 选题阶段不审阅，不构成门槛；因此选题与开题报告始终可以提交。
// 同阶段重复提交不受限制，门控只约束进入下一阶段。
func (rs RecordSet) CanSubmit(stage Stage) bool {
	if !stage.Valid() {
		return false
	}
	_, _, blocked := rs.Blocker(stage)
	return !blocked
}

// Blocker 返回阻塞 stage 的第一个前置阶段及其状态
func (rs RecordSet) Blocker(stage Stage) (Stage, Status, bool) {
	for _, prev := range stage.Before() {
		if !prev.Reviewed() {
			continue
		}
		if st := rs.StageStatus(prev); st != StatusPass {
			return prev, st, true
		}
	}
	return "", "", false
}

// Unlocks 判断 stage 的审阅结论为 pass 时是否会开放下一阶段
// 即 stage 自身已可提交（前置全部通过）且 stage 需要审阅
func (rs RecordSet) Unlocks(stage Stage) (Stage, bool) {
	i := stage.Index()
	if i < 0 || i+1 >= len(Stages) || !stage.Reviewed() {
		return "", false
	}
	if !rs.CanSubmit(stage) || rs.StageStatus(stage) != StatusPass {
		return "", false
	}
	return Stages[i+1], true
}
