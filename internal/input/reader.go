package input

// Reader 提供車種選單與車牌兩種輸入
type Reader interface {
	ReadVehicleClassSelection() (int, error)
	ReadPlate() (string, error)
}

// StaticReader 回傳固定值，HTTP 請求與測試使用
type StaticReader struct {
	Selection int
	Plate     string
}

func NewStaticReader(selection int, plate string) *StaticReader {
	return &StaticReader{Selection: selection, Plate: plate}
}

func (r *StaticReader) ReadVehicleClassSelection() (int, error) {
	return r.Selection, nil
}

func (r *StaticReader) ReadPlate() (string, error) {
	return r.Plate, nil
}
