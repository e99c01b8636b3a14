package jyutping

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnknownCharacter is returned when a character has no known reading
var ErrUnknownCharacter = errors.New("no jyutping reading for character")

// table maps single characters to their most common jyutping reading.
// Covers the starter decks; words outside the table must supply an
// explicit transliteration.
var table = map[rune]string{
	'一': "jat1", '二': "ji6", '三': "saam1", '四': "sei3", '五': "ng5",
	'六': "luk6", '七': "cat1", '八': "baat3", '九': "gau2", '十': "sap6",
	'你': "nei5", '我': "ngo5", '佢': "keoi5", '哋': "dei6",
	'好': "hou2", '早': "zou2", '晨': "san4", '晚': "maan5", '安': "on1",
	'多': "do1", '謝': "ze6", '唔': "m4", '該': "goi1",
	'再': "zoi3", '見': "gin3", '對': "deoi3", '住': "zyu6",
	'食': "sik6", '飯': "faan6", '飲': "jam2", '水': "seoi2", '茶': "caa4",
	'奶': "naai5", '包': "baau1", '麵': "min6", '蛋': "daan6", '魚': "jyu4",
	'肉': "juk6", '菜': "coi3", '果': "gwo2", '蘋': "ping4", '橙': "caang2",
	'屋': "uk1", '企': "kei2", '學': "hok6", '校': "haau6", '書': "syu1",
	'車': "ce1", '巴': "baa1", '士': "si2", '的': "dik1", '火': "fo2",
	'天': "tin1", '地': "dei6", '山': "saan1", '海': "hoi2", '風': "fung1",
	'雨': "jyu5", '日': "jat6", '月': "jyut6", '星': "sing1", '期': "kei4",
	'媽': "maa1", '爸': "baa4", '哥': "go1", '姐': "ze2", '弟': "dai6",
	'妹': "mui6", '公': "gung1", '婆': "po4", '仔': "zai2", '女': "neoi5",
	'大': "daai6", '細': "sai3", '高': "gou1", '矮': "ai2", '快': "faai3",
	'慢': "maan6", '新': "san1", '舊': "gau6", '靚': "leng3", '平': "peng4",
	'貴': "gwai3", '紅': "hung4", '黃': "wong4", '藍': "laam4", '綠': "luk6",
	'白': "baak6", '黑': "hak1", '色': "sik1",
	'貓': "maau1", '狗': "gau2", '鳥': "niu5", '馬': "maa5", '牛': "ngau4",
	'豬': "zyu1", '雞': "gai1", '鴨': "aap3",
	'唱': "coeng3", '歌': "go1", '跳': "tiu3", '舞': "mou5", '玩': "waan2",
	'行': "haang4", '走': "zau2", '坐': "co5", '瞓': "fan3",
	'覺': "gaau3", '講': "gong2", '話': "waa2", '聽': "teng1", '睇': "tai2",
}

// Convert transliterates Chinese text into space-separated jyutping.
// Characters without digits or letters (punctuation, spaces) are
// skipped; an unknown Chinese character fails the whole conversion.
func Convert(text string) (string, error) {
	var syllables []string

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}

		syllable, ok := table[r]
		if !ok {
			return "", ErrUnknownCharacter
		}
		syllables = append(syllables, syllable)
	}

	if len(syllables) == 0 {
		return "", ErrUnknownCharacter
	}
	return strings.Join(syllables, " "), nil
}
