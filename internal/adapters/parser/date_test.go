package parser

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vk-archive-parser/internal/domain"
)

func TestDateNormalizer_Normalize(t *testing.T) {
	n := NewDateNormalizer()

	t.Run("дата с пометкой о редактировании", func(t *testing.T) {
		ts, err := n.Normalize("20 июн 2023 в 8:34:00 (ред.)")

		require.NoError(t, err)
		assert.Equal(t, int64(1687250040), ts)
		assert.Equal(t, time.Date(2023, 6, 20, 8, 34, 0, 0, time.UTC).Unix(), ts)
	})

	t.Run("все месяцы распознаются", func(t *testing.T) {
		for i, abbr := range monthAbbreviations {
			ts, err := n.Normalize("1 " + abbr + " 2020 в 0:00:00")
			require.NoError(t, err, abbr)
			assert.Equal(t, time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Unix(), ts, abbr)
		}
	})

	tests := []struct {
		name  string
		input string
	}{
		{name: "пустая строка", input: ""},
		{name: "неизвестный месяц", input: "14 jul 2021 в 11:17:48"},
		{name: "нет разделителя в", input: "14 июл 2021 11:17:48"},
		{name: "нет секунд", input: "14 июл 2021 в 11:17"},
		{name: "несуществующий день", input: "31 фев 2021 в 11:17:48"},
		{name: "час вне диапазона", input: "14 июл 2021 в 24:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnparseableDateTime))

			var parseErr *domain.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, n.months.Replace(tt.input), parseErr.Input)
		})
	}
}

func TestFormatDate(t *testing.T) {
	n := NewDateNormalizer()

	assert.Equal(t, "14 июл 2021 в 11:17:48", FormatDate(1626261468))

	for _, ts := range []int64{0, 1626261468, 1687250040, 951782400, 1735689599} {
		text := FormatDate(ts)

		parsed, err := n.Normalize(text)
		require.NoError(t, err, text)
		assert.Equal(t, ts, parsed, text)

		again, err := n.Normalize(FormatDate(parsed))
		require.NoError(t, err)
		assert.Equal(t, parsed, again)
	}
}

func TestDefaultDateNormalizer(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*DateNormalizer, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = DefaultDateNormalizer()
		}(i)
	}
	wg.Wait()

	for _, n := range got {
		assert.Same(t, got[0], n)
	}
}
