package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khamari/khamari-api/internal/model"
)

func TestFilterNewAlerts_ExactDuplicateSkipped(t *testing.T) {
	existing := []model.Alert{
		{Title: "ঝড়ের সতর্কতা", Message: "প্রবল বাতাস"},
	}
	candidates := []model.Alert{
		{Title: "ঝড়ের সতর্কতা", Message: "প্রবল বাতাস"},
	}

	got := FilterNewAlerts(existing, candidates, 2)
	assert.Empty(t, got)
}

func TestFilterNewAlerts_TitleCapCountsExisting(t *testing.T) {
	existing := []model.Alert{
		{Title: "রোগের ঝুঁকি", Message: "আর্দ্রতা ৮৮%"},
		{Title: "রোগের ঝুঁকি", Message: "আর্দ্রতা ৯০%"},
	}
	candidates := []model.Alert{
		{Title: "রোগের ঝুঁকি", Message: "আর্দ্রতা ৯২%"},
	}

	got := FilterNewAlerts(existing, candidates, 2)
	assert.Empty(t, got, "two same-title alerts today exhaust the default cap")

	got = FilterNewAlerts(existing, candidates, 3)
	assert.Len(t, got, 1, "raising the cap admits a third distinct message")
}

func TestFilterNewAlerts_CandidatesCountAgainstEachOther(t *testing.T) {
	candidates := []model.Alert{
		{Title: "সেচের পরামর্শ", Message: "বার্তা ১"},
		{Title: "সেচের পরামর্শ", Message: "বার্তা ২"},
		{Title: "সেচের পরামর্শ", Message: "বার্তা ৩"},
	}

	got := FilterNewAlerts(nil, candidates, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, "বার্তা ১", got[0].Message)
	assert.Equal(t, "বার্তা ২", got[1].Message)
}

func TestFilterNewAlerts_DistinctTitlesUnaffected(t *testing.T) {
	existing := []model.Alert{
		{Title: "শৈত্যপ্রবাহ", Message: "তাপমাত্রা কম"},
	}
	candidates := []model.Alert{
		{Title: "ঝড়ের সতর্কতা", Message: "বাতাস বাড়ছে"},
		{Title: "সেচের পরামর্শ", Message: "শুষ্ক আবহাওয়া"},
	}

	got := FilterNewAlerts(existing, candidates, 2)
	assert.Len(t, got, 2)
}

func TestFilterNewAlerts_ZeroCapUsesDefault(t *testing.T) {
	candidates := []model.Alert{
		{Title: "ক", Message: "১"},
		{Title: "ক", Message: "২"},
		{Title: "ক", Message: "৩"},
	}

	got := FilterNewAlerts(nil, candidates, 0)
	assert.Len(t, got, 2)
}
