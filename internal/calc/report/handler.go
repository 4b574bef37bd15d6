package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
	"github.com/phpdave11/gofpdf"
)

type Input struct {
	Project  string         `json:"project"`
	Author   string         `json:"author"`
	Title    string         `json:"title"`
	Notes    string         `json:"notes"`
	Scenario ampacity.Input `json:"scenario"`
}

type Handler struct{}

// Generate solves the scenario and renders a QA/QC report: input echo,
// resistance chain, losses, thermal network and the ampacity verdict.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "Cable Ampacity Report"
	}

	res, err := ampacity.Calculate(input.Scenario)
	if err != nil && !ampacity.Degraded(err) {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", input.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", input.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	cond := input.Scenario.Cable.Conductor
	section(pdf, "Cable")
	line(pdf, "Conductor", fmt.Sprintf("%s %s, %.1f mm2, d=%.2f mm",
		cond.Material, cond.Stranding, cond.CrossSectionMM2, cond.DiameterMM))
	line(pdf, "Insulation", fmt.Sprintf("%s, %.2f mm",
		input.Scenario.Cable.Insulation.Material, input.Scenario.Cable.Insulation.ThicknessMM))
	if s := input.Scenario.Cable.Shield; s != nil {
		line(pdf, "Shield", fmt.Sprintf("%s %s, %s bonded", s.Material, s.Type, s.Bonding))
	}
	line(pdf, "Jacket", fmt.Sprintf("%s, %.2f mm",
		input.Scenario.Cable.Jacket.Material, input.Scenario.Cable.Jacket.ThicknessMM))
	line(pdf, "Installation", input.Scenario.Installation.Type)
	line(pdf, "U0 / f", fmt.Sprintf("%.1f kV / %.0f Hz",
		input.Scenario.Operating.VoltageV/1000, input.Scenario.Operating.FrequencyHz))
	pdf.Ln(4)

	section(pdf, "AC Resistance")
	line(pdf, "Rdc", fmt.Sprintf("%.4f mOhm/m", res.ACResistance.RdcOhmPerM*1000))
	line(pdf, "Skin effect ys", fmt.Sprintf("%.4f", res.ACResistance.Ys))
	line(pdf, "Proximity effect yp", fmt.Sprintf("%.4f", res.ACResistance.Yp))
	line(pdf, "Rac", fmt.Sprintf("%.4f mOhm/m", res.ACResistance.RacOhmPerM*1000))
	pdf.Ln(4)

	section(pdf, "Losses at Rated Current")
	line(pdf, "Conductor", fmt.Sprintf("%.2f W/m", res.Losses.ConductorWPerM))
	line(pdf, "Dielectric", fmt.Sprintf("%.4f W/m", res.Losses.DielectricWPerM))
	line(pdf, "Shield", fmt.Sprintf("%.3f W/m (lambda1 = %.4f)", res.Losses.ShieldWPerM, res.ShieldLossFactor))
	pdf.Ln(4)

	section(pdf, "Thermal Resistances (K.m/W)")
	line(pdf, "R1 insulation", fmt.Sprintf("%.4f", res.Thermal.R1))
	line(pdf, "R2 jacket", fmt.Sprintf("%.4f", res.Thermal.R2))
	line(pdf, "R3 conduit", fmt.Sprintf("%.4f (gap %.4f + wall %.4f)",
		res.Thermal.R3, res.Thermal.R3Gap, res.Thermal.R3Wall))
	line(pdf, "R concrete", fmt.Sprintf("%.4f", res.Thermal.RConcrete))
	line(pdf, "R4 earth", fmt.Sprintf("%.4f", res.Thermal.R4))
	line(pdf, "R mutual", fmt.Sprintf("%.4f (factor %.3f)", res.Thermal.RMutual, res.MutualHeatingFactor))
	line(pdf, "Total", fmt.Sprintf("%.4f", res.Thermal.Total))
	pdf.Ln(4)

	section(pdf, "Temperature Rise")
	line(pdf, "From conductor losses", fmt.Sprintf("%.2f C", res.TemperatureRise.ConductorC))
	line(pdf, "From dielectric losses", fmt.Sprintf("%.2f C", res.TemperatureRise.DielectricC))
	line(pdf, "Available", fmt.Sprintf("%.2f C (%.1f to %.1f C)",
		res.DeltaTAvailableC, res.AmbientTempC, res.MaxConductorTempC))
	pdf.Ln(4)

	section(pdf, "Result")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Ampacity: %.1f A (cyclic %.1f A) - %s",
		res.AmpacityA, res.AmpacityCyclicA, res.DesignStatus))
	pdf.Ln(8)
	if err != nil {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, "Degraded result: "+err.Error(), "", "L", false)
	}
	if len(res.PerCable) > 0 {
		pdf.Ln(4)
		section(pdf, "Per-Cable Ampacity")
		for _, c := range res.PerCable {
			line(pdf, fmt.Sprintf("Duct (%d,%d)", c.Row, c.Col),
				fmt.Sprintf("x=%.3f m, y=%.3f m: %.1f A", c.XM, c.YM, c.AmpacityA))
		}
	}
	if input.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, input.Notes, "", "L", false)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"ampacity_report.pdf\"")
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

func line(pdf *gofpdf.Fpdf, key, value string) {
	pdf.Cell(55, 5, key)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}
