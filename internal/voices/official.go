package voices

var official = []Voice{
	{ID: "female-shaonv", Name: "Young girl", Category: CategoryFemale},
	{ID: "female-yujie", Name: "Mature lady", Category: CategoryFemale},
	{ID: "female-chengshu", Name: "Grown woman", Category: CategoryFemale},
	{ID: "female-tianmei", Name: "Sweet woman", Category: CategoryFemale},
	{ID: "presenter_female", Name: "Female presenter", Category: CategoryFemale},
	{ID: "audiobook_female_1", Name: "Audiobook female 1", Category: CategoryFemale},
	{ID: "audiobook_female_2", Name: "Audiobook female 2", Category: CategoryFemale},
	{ID: "female-shaonv-jingpin", Name: "Young girl (premium)", Category: CategoryFemale},
	{ID: "female-yujie-jingpin", Name: "Mature lady (premium)", Category: CategoryFemale},
	{ID: "female-chengshu-jingpin", Name: "Grown woman (premium)", Category: CategoryFemale},
	{ID: "female-tianmei-jingpin", Name: "Sweet woman (premium)", Category: CategoryFemale},

	{ID: "male-qn-qingse", Name: "Young man", Category: CategoryMale},
	{ID: "male-qn-jingying", Name: "Professional", Category: CategoryMale},
	{ID: "male-qn-badao", Name: "Executive", Category: CategoryMale},
	{ID: "male-qn-daxuesheng", Name: "Student", Category: CategoryMale},
	{ID: "presenter_male", Name: "Male presenter", Category: CategoryMale},
	{ID: "audiobook_male_1", Name: "Audiobook male 1", Category: CategoryMale},
	{ID: "audiobook_male_2", Name: "Audiobook male 2", Category: CategoryMale},
	{ID: "male-qn-qingse-jingpin", Name: "Young man (premium)", Category: CategoryMale},
	{ID: "male-qn-jingying-jingpin", Name: "Professional (premium)", Category: CategoryMale},
	{ID: "male-qn-badao-jingpin", Name: "Executive (premium)", Category: CategoryMale},
	{ID: "male-qn-daxuesheng-jingpin", Name: "Student (premium)", Category: CategoryMale},

	{ID: "clever_boy", Name: "Clever boy", Category: CategoryCharacter},
	{ID: "cute_boy", Name: "Cute boy", Category: CategoryCharacter},
	{ID: "lovely_girl", Name: "Lovely girl", Category: CategoryCharacter},
	{ID: "cartoon_pig", Name: "Cartoon pig", Category: CategoryCharacter},
	{ID: "bingjiao_didi", Name: "Moody younger brother", Category: CategoryCharacter},
	{ID: "junlang_nanyou", Name: "Handsome boyfriend", Category: CategoryCharacter},
	{ID: "chunzhen_xuedi", Name: "Innocent junior", Category: CategoryCharacter},
	{ID: "lengdan_xiongzhang", Name: "Aloof elder", Category: CategoryCharacter},
	{ID: "badao_shaoye", Name: "Young master", Category: CategoryCharacter},
	{ID: "tianxin_xiaoling", Name: "Sweetheart", Category: CategoryCharacter},
	{ID: "qiaopi_mengmei", Name: "Playful girl", Category: CategoryCharacter},
	{ID: "wumei_yujie", Name: "Charming lady", Category: CategoryCharacter},
	{ID: "diadia_xuemei", Name: "Coy junior", Category: CategoryCharacter},
	{ID: "danya_xuejie", Name: "Elegant senior", Category: CategoryCharacter},
	{ID: "Santa_Claus", Name: "Santa Claus", Category: CategoryCharacter},
	{ID: "Grinch", Name: "Grinch", Category: CategoryCharacter},
	{ID: "Rudolph", Name: "Rudolph", Category: CategoryCharacter},
	{ID: "Arnold", Name: "Arnold", Category: CategoryCharacter},
	{ID: "Charming_Santa", Name: "Charming Santa", Category: CategoryCharacter},
	{ID: "Charming_Lady", Name: "Charming Lady", Category: CategoryCharacter},
	{ID: "Sweet_Girl", Name: "Sweet Girl", Category: CategoryCharacter},
	{ID: "Cute_Elf", Name: "Cute Elf", Category: CategoryCharacter},
	{ID: "Attractive_Girl", Name: "Attractive Girl", Category: CategoryCharacter},
	{ID: "Serene_Woman", Name: "Serene Woman", Category: CategoryCharacter},
}

var backupVoices = []string{"presenter_male", "presenter_female", "audiobook_male_1", "audiobook_female_1"}

var officialByID = func() map[string]Voice {
	m := make(map[string]Voice, len(official))
	for i := range official {
		official[i].Official = true
		m[official[i].ID] = official[i]
	}
	return m
}()

// Official returns a copy of the built-in voice table.
func Official() []Voice {
	return append([]Voice(nil), official...)
}
