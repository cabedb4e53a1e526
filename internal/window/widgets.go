package window

import (
	"image/color"

	"gioui.org/font"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"winkeeper/internal/i18n"
)

const decoActions = system.ActionMinimize | system.ActionMove | system.ActionClose

func (w *Window) draw(gtx layout.Context, placement, state string) layout.Dimensions {
	drawBackground(gtx, w.config.BGColor)
	ownTitleBar := w.ownTitleBar()

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !ownTitleBar {
				return layout.Dimensions{}
			}
			return material.Decorations(w.theme, &w.deco, decoActions, Title).Layout(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return w.drawBody(gtx, placement, state)
			})
		}),
	)
}

func (w *Window) drawBody(gtx layout.Context, placement, state string) layout.Dimensions {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return w.drawRow(gtx, i18n.T("window_restored"), placement)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return w.drawRow(gtx, i18n.T("window_state"), state)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(w.theme, i18n.T("window_hint"))
			lbl.Color = w.config.TextColor
			return lbl.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Dimensions{Size: gtx.Constraints.Min}
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(w.theme, i18n.T("window_close"))
			lbl.Color = w.config.TextDimColor
			return lbl.Layout(gtx)
		}),
	)
}

// drawRow draws a dim label followed by an accented value.
func (w *Window) drawRow(gtx layout.Context, label, value string) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Baseline}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(w.theme, unit.Sp(13), label+":")
			lbl.Color = w.config.TextDimColor
			return lbl.Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			lbl := material.Label(w.theme, unit.Sp(14), value)
			lbl.Color = w.config.AccentColor
			lbl.Font.Weight = font.Medium
			return lbl.Layout(gtx)
		}),
	)
}

// drawBackground fills the whole window.
func drawBackground(gtx layout.Context, col color.NRGBA) {
	rect := clip.Rect{Max: gtx.Constraints.Max}
	paint.FillShape(gtx.Ops, col, rect.Op())
}
