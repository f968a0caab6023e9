package database

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel(log.DebugLevel))
	assert.Equal(t, logger.Warn, gormLogLevel(log.InfoLevel))
	assert.Equal(t, logger.Warn, gormLogLevel(log.WarnLevel))
	assert.Equal(t, logger.Error, gormLogLevel(log.ErrorLevel))
}
