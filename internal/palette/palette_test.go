package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baustructura/bau-geo/internal/marker"
)

func TestColorFor_TotalOverEnumeration(t *testing.T) {
	seen := map[string]marker.LoadClass{}
	for _, c := range marker.LoadClasses {
		color := ColorFor(c)
		assert.NotEmpty(t, color)
		assert.NotEqual(t, ColorFor(marker.None), color, "class %s shares the None colour", c)
		if prev, dup := seen[color]; dup {
			t.Errorf("classes %s and %s share colour %s", prev, c, color)
		}
		seen[color] = c
	}
}

func TestColorFor_UnknownFallsBackToNone(t *testing.T) {
	assert.Equal(t, "#808080", ColorFor(marker.None))
	assert.Equal(t, ColorFor(marker.None), ColorFor(marker.LoadClass(-3)))
	assert.Equal(t, ColorFor(marker.None), ColorFor(marker.LoadClass(100)))
}

func TestColorForName_Deterministic(t *testing.T) {
	for _, name := range []string{"Bk3.2", "Bk3_2", "unbekannt", "", "Bk1.0"} {
		first := ColorForName(name)
		second := ColorForName(name)
		assert.Equal(t, first, second, name)
	}
	assert.Equal(t, ColorFor(marker.Bk3_2), ColorForName("Bk3.2"))
	assert.Equal(t, ColorFor(marker.None), ColorForName("unbekannt"))
}

func TestIconFor(t *testing.T) {
	icon := IconFor(marker.Bk100)
	assert.Equal(t, "pin", icon.Shape)
	assert.Equal(t, "#FF0000", icon.Color)
	assert.Equal(t, 12, icon.AnchorX)
	assert.Equal(t, 36, icon.AnchorY)
	assert.Contains(t, icon.SVG, `fill="#FF0000"`)

	assert.Equal(t, IconFor(marker.None), IconFor(marker.LoadClass(77)))
}

func TestLegend(t *testing.T) {
	legend := Legend()
	assert.Len(t, legend, 8)
	assert.Equal(t, marker.Bk100, legend[0].LoadClass)
	assert.Equal(t, "Bk3.2", legend[3].Label)
	assert.Equal(t, marker.None, legend[len(legend)-1].LoadClass)
}

func TestInfo(t *testing.T) {
	info, ok := Info(marker.Bk10)
	assert.True(t, ok)
	assert.Equal(t, marker.Bk10, info.LoadClass)
	assert.Equal(t, "III", info.ConstructionClass)
	assert.True(t, info.HasGravelBase())

	info, ok = Info(marker.Bk100)
	assert.True(t, ok)
	assert.False(t, info.HasGravelBase())

	_, ok = Info(marker.None)
	assert.False(t, ok)

	assert.Len(t, Infos(), len(marker.LoadClasses))
}
