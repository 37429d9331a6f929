package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
)

func TestHistoryActionValidate(t *testing.T) {
	for _, a := range []model.HistoryAction{
		model.HistoryActionAdd,
		model.HistoryActionWithdraw,
		model.HistoryActionIncrease,
		model.HistoryActionDelete,
	} {
		assert.NoError(t, a.Validate(), a)
	}

	assert.Error(t, model.HistoryAction("").Validate())
	assert.Error(t, model.HistoryAction("remove").Validate())
}
