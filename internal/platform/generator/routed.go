package generator

import "context"

// RoutedEngine sends draft/refine to Text and render to Render.
type RoutedEngine struct {
	Text   Engine
	Render Engine
}

func (r *RoutedEngine) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Mode.IsText() && r.Text != nil {
		return r.Text.Generate(ctx, req)
	}
	return r.Render.Generate(ctx, req)
}
