package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/engine"
)

// 退出码
const (
	ExitSuccess = 0 // 成功，或仅通知失败
	ExitFailed  = 1 // 报告生成/落盘失败，或整理任务失败
	ExitError   = 2 // 配置或参数错误
)

// JobFailureError 任务已启动但执行失败
type JobFailureError struct {
	Err error
}

func (e *JobFailureError) Error() string {
	return e.Err.Error()
}

func (e *JobFailureError) Unwrap() error { return e.Err }

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var stageErr *engine.StageError
	var jobErr *JobFailureError
	if errors.As(err, &stageErr) || errors.As(err, &jobErr) {
		return ExitFailed
	}

	// 其余均为配置/参数错误
	return ExitError
}
