package config

// Default topic lists for the scope gate, in Arabic and English. The
// allowlist covers organisational categories; the denylist covers topics
// the assistant must never engage with. Both are policy parameters and
// fully overridable from the config file.

var defaultAllowlist = []string{
	// Arabic
	"سياسات الموارد البشرية", "الموارد البشرية",
	"الدعم التقني", "التقنية", "تقنية المعلومات",
	"الإجراءات الإدارية", "الإدارة",
	"المزايا", "الفوائد", "مزايا الموظفين",
	"الإجازات", "الإجازة", "إجازة سنوية", "إجازة مرضية",
	"التدريب", "التطوير",
	"الرواتب", "الراتب", "الأجور",
	"التأمين", "التأمين الصحي",
	"التقاعد", "معاش التقاعد",
	"ساعات العمل", "وقت العمل",
	"المرافق", "الخدمات",
	"السياسات", "القوانين",
	"الإجراءات", "الخطوات",
	"الموظفين", "العاملين",
	"الهيئة", "الشركة",
	"العمل", "الوظيفة", "المهام",
	"التوظيف", "الاستقدام",
	"التقييم", "التقييم السنوي",
	"الترقية", "الترقيات",
	"الشكاوى", "الاعتراضات",

	// English
	"hr", "human resources",
	// "it" on its own is skipped: whole-word matching would treat the
	// English pronoun as an allowlisted topic.
	"information technology", "technical support", "helpdesk",
	"administrative", "administration",
	"benefits", "employee benefits",
	"leave", "vacation", "sick leave", "annual leave",
	"training", "development",
	"salary", "payroll", "wages",
	"insurance", "health insurance",
	"retirement", "pension",
	"working hours",
	"facilities", "services",
	"policies", "policy", "regulations",
	"procedures", "procedure",
	"employees", "staff",
	"organization", "company",
	"job", "tasks",
	"recruitment", "hiring",
	"evaluation", "annual review",
	"promotion", "advancement",
	"complaints", "grievances",
}

var defaultDenylist = []string{
	// Arabic
	"الطقس", "الجو", "المطر",
	"الحكومة", "الرئيس", "الوزير",
	"الرياضة", "كرة القدم", "المباراة",
	"الطبخ", "الوصفات", "المطاعم",
	"السياحة", "الرحلات", "الطيران",
	"الأفلام", "المسلسلات", "الترفيه", "السينما",
	"الموسيقى", "الأغاني", "المطربين",
	"الأخبار",
	"الحضارات", "الفراعنة",
	"الفيزياء", "الكيمياء",
	"الأمراض", "العلاج", "الطبيب",
	"الأسهم", "البنوك",
	"الجامعات", "الطلاب",
	"الصلاة", "الصوم", "الحج",
	"الفلسفة", "النظريات",

	// English
	"weather", "rain", "sunny", "cloudy",
	"politics", "government", "president", "minister",
	"sports", "football", "soccer", "basketball",
	"cooking", "recipe", "restaurant",
	"tourism", "airline",
	"movies", "series", "entertainment", "cinema",
	"music", "songs", "singers",
	"news headlines",
	"civilizations", "pharaohs",
	"physics", "chemistry",
	"diseases", "doctor",
	"stocks", "banks",
	"universities", "students",
	"prayer", "fasting", "pilgrimage",
	"philosophy", "theories",
}
