package api

import (
	"github.com/chriskh369/studyhub-agent/app/database"
	"github.com/chriskh369/studyhub-agent/app/tasks"
)

type Handler struct {
	ledgerRepo  database.LedgerRepository
	status      *tasks.Status
	scheduler   tasks.TaskSchedulerInterface
	sinkCount   int
	version     string
	buildNumber int
}
