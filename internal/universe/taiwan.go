package universe

// taiwan150 is the Taiwan 50 plus mid-cap 100 constituent list.
// It contains a few repeats; Taiwan150 removes them.
var taiwan150 = []string{
	// Taiwan 50
	"2330.TW", "2317.TW", "2454.TW", "2308.TW", "2303.TW", "2881.TW", "2882.TW", "2891.TW", "2886.TW", "2884.TW",
	"2382.TW", "2885.TW", "2892.TW", "2207.TW", "2357.TW", "2890.TW", "1216.TW", "2912.TW", "2002.TW", "2880.TW",
	"2883.TW", "2327.TW", "2345.TW", "2379.TW", "3034.TW", "5880.TW", "2395.TW", "3008.TW", "2887.TW", "1101.TW",
	"3045.TW", "2801.TW", "2412.TW", "6505.TW", "3711.TW", "2603.TW", "3037.TW", "5871.TW", "2354.TW", "4904.TW",
	"2324.TW", "5876.TW", "2408.TW", "9910.TW", "2105.TW", "1303.TW", "1301.TW", "1326.TW", "3017.TW", "2609.TW",
	// mid-cap 100
	"2356.TW", "3231.TW", "2376.TW", "2383.TW", "2353.TW", "2409.TW", "3481.TW", "2615.TW", "1102.TW", "1402.TW",
	"2474.TW", "4938.TW", "9904.TW", "9945.TW", "2006.TW", "1605.TW", "2313.TW", "2368.TW", "3035.TW", "3443.TW",
	"3661.TW", "6669.TW", "2301.TW", "2337.TW", "2344.TW", "2347.TW", "2360.TW", "2377.TW", "2385.TW", "2449.TW",
	"2492.TW", "2498.TW", "2542.TW", "2606.TW", "2610.TW", "2618.TW", "2809.TW", "2812.TW", "2834.TW", "2845.TW",
	"2867.TW", "2888.TW", "2889.TW", "2903.TW", "2915.TW", "3036.TW", "3044.TW", "3189.TW", "3293.TW", "3532.TW",
	"3533.TW", "3653.TW", "3702.TW", "3706.TW", "4919.TW", "4958.TW", "4961.TW", "4966.TW", "5269.TW", "5347.TWO",
	"5483.TWO", "5522.TW", "5871.TW", "6005.TW", "6176.TW", "6213.TW", "6239.TW", "6269.TW", "6271.TW", "6278.TW",
	"6285.TW", "6409.TW", "6415.TW", "6443.TW", "6472.TW", "6515.TW", "6531.TW", "6533.TW", "6669.TW", "6770.TW",
	"6781.TW", "8046.TW", "8069.TW", "8150.TW", "8299.TW", "8436.TW", "8454.TW", "8464.TW", "9914.TW", "9917.TW",
	"9921.TW", "9933.TW", "9941.TW", "9958.TW", "1504.TW", "1513.TW", "1519.TW", "1560.TW", "1590.TW", "1722.TW",
}

// Taiwan150 returns the built-in Taiwan universe, sorted ascending.
func Taiwan150() *Universe {
	return New(sortedUnique(taiwan150), nil)
}
