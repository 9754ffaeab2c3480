package features

// SchemaVersion tags the feature layout. Bump on any change to the
// feature list or its ordering: cached results keyed on it stay coherent.
const SchemaVersion = "v1"

// warmup is the longest lookback across all features (vol_60).
const warmup = 60

func featureNames() []string {
	names := []string{
		"ret_lag_1", "ret_lag_5", "ret_lag_20",
		"vol_5", "vol_20", "vol_60",
		"sma_ratio_20", "sma_ratio_50",
		"ema_12", "ema_26",
		"rsi_14",
		"momentum_5", "momentum_20",
		"month_start", "month_end",
	}
	for m := 1; m <= 12; m++ {
		names = append(names, monthName(m))
	}
	for d := 1; d <= 5; d++ {
		names = append(names, weekdayName(d))
	}
	return names
}

func monthName(m int) string {
	return "month_" + itoa2(m)
}

func weekdayName(d int) string {
	return "weekday_" + itoa2(d)
}

func itoa2(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return "1" + string(rune('0'+n-10))
}
