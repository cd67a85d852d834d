package tns

import "github.com/everFinance/tns/common"

var log = common.NewLog("tns")
