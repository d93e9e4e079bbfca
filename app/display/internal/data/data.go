package data

import (
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/exec_daily/app/display/internal/conf"
	"github.com/iWorld-y/exec_daily/app/exec_daily/pkg/storage"
)

// Data 报告目录
type Data struct {
	root  string
	store *storage.ReportStore
}

func NewData(c *conf.Reports, logger log.Logger) (*Data, func(), error) {
	if c == nil || c.Root == "" {
		return nil, nil, fmt.Errorf("reports.root is required")
	}

	helper := log.NewHelper(logger)
	if _, err := os.Stat(c.Root); err != nil {
		// 首份日报生成前目录可能还不存在
		helper.Warnf("report root %s not readable yet: %v", c.Root, err)
	}

	cleanup := func() {
		helper.Info("closing the data resources")
	}
	return &Data{root: c.Root, store: storage.NewReportStore(c.Root, c.Prefix())}, cleanup, nil
}
