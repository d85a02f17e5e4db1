package renderer

import (
	"github.com/unrolled/render"
)

func New(isDevelopment bool) *render.Render {
	return render.New(render.Options{
		IndentJSON:    isDevelopment,
		IsDevelopment: isDevelopment,
		UnEscapeHTML:  true,
	})
}
