package loxtest_test

import (
	"testing"

	"github.com/sdecook/glox/internal/loxtest"
)

func TestGoldenCases(t *testing.T) {
	cases := loxtest.Load(t, "../../testdata/cases")
	if len(cases) == 0 {
		t.Fatal("no golden cases found under testdata/cases")
	}
	for _, c := range cases {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			loxtest.Run(t, c)
		})
	}
}
