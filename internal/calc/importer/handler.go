package importer

import (
	"encoding/json"
	"fmt"
	"net/http"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
	"github.com/xuri/excelize/v2"
)

type Handler struct{}

type ImportResult struct {
	Count   int               `json:"count"`
	Results []ampacity.Result `json:"results"`
}

// Studies imports a direct-buried study sheet, one scenario per row:
// material, size_mm2, diameter_mm, insulation, thickness_mm, voltage_v,
// frequency_hz, depth_m, spacing_m, soil_rho, ambient_c, max_temp_c.
// Rows that fail to parse or fail validation are skipped; rows that solve to
// a degraded (infeasible or diverged) result are kept.
func (h *Handler) Studies(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		http.Error(w, "Empty sheet", http.StatusBadRequest)
		return
	}

	var results []ampacity.Result
	for i := 1; i < len(rows); i++ {
		input, err := parseStudyRow(rows[i])
		if err != nil {
			continue
		}
		res, err := ampacity.Calculate(input)
		if err != nil && !ampacity.Degraded(err) {
			continue
		}
		results = append(results, res)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Count: len(results), Results: results})
}

func parseStudyRow(row []string) (ampacity.Input, error) {
	if len(row) < 11 {
		return ampacity.Input{}, fmt.Errorf("bad row")
	}
	size, err := toFloat(row[1])
	if err != nil {
		return ampacity.Input{}, err
	}
	diameter, err := toFloat(row[2])
	if err != nil {
		return ampacity.Input{}, err
	}
	thickness, err := toFloat(row[4])
	if err != nil {
		return ampacity.Input{}, err
	}
	voltage, err := toFloat(row[5])
	if err != nil {
		return ampacity.Input{}, err
	}
	freq, err := toFloat(row[6])
	if err != nil {
		return ampacity.Input{}, err
	}
	depth, err := toFloat(row[7])
	if err != nil {
		return ampacity.Input{}, err
	}
	spacing, err := toFloat(row[8])
	if err != nil {
		return ampacity.Input{}, err
	}
	soil, err := toFloat(row[9])
	if err != nil {
		return ampacity.Input{}, err
	}
	ambient, err := toFloat(row[10])
	if err != nil {
		return ampacity.Input{}, err
	}
	maxTemp := 0.0
	if len(row) > 11 && row[11] != "" {
		maxTemp, _ = toFloat(row[11])
	}

	return ampacity.Input{
		Cable: ampacity.Cable{
			Conductor: ampacity.Conductor{
				Material:        row[0],
				CrossSectionMM2: size,
				DiameterMM:      diameter,
				Stranding:       ampacity.StrandingCompact,
			},
			Insulation: ampacity.Insulation{
				Material:    row[3],
				ThicknessMM: thickness,
			},
			Jacket: ampacity.Jacket{
				Material:    ampacity.JacketPE,
				ThicknessMM: 3.0,
			},
		},
		Operating: ampacity.Operating{
			VoltageV:          voltage,
			FrequencyHz:       freq,
			MaxConductorTempC: maxTemp,
		},
		Installation: ampacity.InstallationSpec{
			Type: "direct_buried",
			DirectBuried: &ampacity.DirectBuried{
				DepthM:          depth,
				SpacingM:        spacing,
				SoilResistivity: soil,
				AmbientTempC:    ambient,
			},
		},
	}, nil
}

// Export solves a batch payload and streams the results as a workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Items []ampacity.Input `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Items) == 0 {
		http.Error(w, "No items", http.StatusBadRequest)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []any{
		"scenario", "installation", "ampacity_a", "ampacity_cyclic_a", "status",
		"rac_ohm_per_m", "wd_w_per_m", "r_total_km_per_w", "iterations",
	}
	_ = f.SetSheetRow(sheet, "A1", &header)

	for i, scenario := range input.Items {
		res, err := ampacity.Calculate(scenario)
		if err != nil && !ampacity.Degraded(err) {
			http.Error(w, fmt.Sprintf("Calculation error in item %d: %v", i, err), http.StatusBadRequest)
			return
		}
		row := []any{
			i + 1,
			scenario.Installation.Type,
			res.AmpacityA,
			res.AmpacityCyclicA,
			res.DesignStatus,
			res.ACResistance.RacOhmPerM,
			res.Losses.DielectricWPerM,
			res.Thermal.Total,
			res.Iterations,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheet, cell, &row)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"ampacity_results.xlsx\"")
	if err := f.Write(w); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
}

func toFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(s, "%f", &v)
	return v, err
}
