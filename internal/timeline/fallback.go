package timeline

// Fallback returns the built-in seed dataset, substituted whenever the
// persisted file is absent, unparseable, or has no persons. Substitution
// is a value replacement only; the fallback is never written to disk on
// its own.
func Fallback() Dataset {
	return Dataset{Persons: []Person{
		{
			Name:  "毛泽东",
			Style: &Style{MarkerColor: "#f97316", LineColor: "#fb923c"},
			Events: []Event{
				{Year: Int(1893), Age: Int(0), Place: "湘潭·韶山", Lat: Num(27.922), Lon: Num(112.528), Title: "出生", Detail: "出生于湖南省湘潭县韶山冲。"},
				{Year: Int(1921), Age: Int(28), Place: "上海", Lat: Num(31.2304), Lon: Num(121.4737), Title: "参加建党", Detail: "参与中国共产党成立相关活动。"},
				{Year: Int(1935), Age: Int(42), Place: "遵义", Lat: Num(27.733), Lon: Num(106.917), Title: "遵义会议", Detail: "在遵义会议上确立领导地位。"},
				{Year: Int(1949), Age: Int(56), Place: "北京", Lat: Num(39.9042), Lon: Num(116.4074), Title: "新中国成立", Detail: "中华人民共和国成立，迁至北京工作。"},
			},
		},
		{
			Name:  "毛晓彤",
			Style: &Style{MarkerColor: "#e91e63", LineColor: "#f06292"},
			Events: []Event{
				{Year: Int(1988), Age: Int(0), Place: "天津", Lat: Num(39.084), Lon: Num(117.199), Title: "出生", Detail: "出生于天津。"},
				{Year: Int(2006), Age: Int(18), Place: "北京", Lat: Num(39.9042), Lon: Num(116.4074), Title: "就读表演", Detail: "在北京系统学习表演。"},
				{Year: Int(2014), Age: Int(26), Place: "横店（浙江·金华）", Lat: Num(29.156), Lon: Num(120.032), Title: "横店拍摄", Detail: "参与多部剧集拍摄工作。"},
				{Year: Int(2017), Age: Int(29), Place: "上海", Lat: Num(31.2304), Lon: Num(121.4737), Title: "作品播出", Detail: "多部作品在沪上平台播出。"},
			},
		},
	}}
}
