package parser

// findDataBounds finds the bounding box of non-empty cells.
// All bounds are -1 when every cell is empty.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// cellAt returns the cell at (row, col) or "" when the row is short.
func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// isBlankRow reports whether the row has no values between minCol and maxCol.
func isBlankRow(rows [][]string, row, minCol, maxCol int) bool {
	for col := minCol; col <= maxCol; col++ {
		if cellAt(rows, row, col) != "" {
			return false
		}
	}
	return true
}
